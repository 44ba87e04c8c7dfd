package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"webprint-client/internal/failure"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"validation", failure.ErrFileTooLarge, http.StatusBadRequest, "validation"},
		{"auth", fmt.Errorf("sign in: %w", failure.ErrAuth), http.StatusUnauthorized, "auth"},
		{"session expired", errNotSignedIn, http.StatusUnauthorized, "session_expired"},
		{"service down", failure.ErrBackendUnavailable, http.StatusGatewayTimeout, "service_down"},
		{"transient", failure.ErrTransient, http.StatusBadGateway, "request_failed"},
		{"discarded job", failure.ErrJobDiscarded, http.StatusConflict, "invalid_phase"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, statusFor(tt.err))
			assert.Equal(t, tt.kind, newErrorBody(tt.err).Kind)
		})
	}
}
