package gateway

import (
	"fmt"
	"net/http"
	"slices"

	"webprint-client/internal/failure"
)

// Classify wraps a gateway error with the failure kind it maps to at the
// calling boundary. Answers whose status is in rejectedCodes map to rejected,
// a 504 maps to failure.ErrBackendUnavailable, and everything else is
// failure.ErrTransient.
func Classify(err error, rejected error, rejectedCodes ...int) error {
	if err == nil {
		return nil
	}
	code := StatusCode(err)
	switch {
	case code != 0 && slices.Contains(rejectedCodes, code):
		return fmt.Errorf("%w: %w", rejected, err)
	case code == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %w", failure.ErrBackendUnavailable, err)
	default:
		return fmt.Errorf("%w: %w", failure.ErrTransient, err)
	}
}
