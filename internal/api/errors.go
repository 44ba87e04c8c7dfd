package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"webprint-client/internal/failure"
)

// errorBody is the JSON body of every failed request.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

var kindNames = map[error]string{
	failure.ErrValidation:         "validation",
	failure.ErrAuth:               "auth",
	failure.ErrSessionExpired:     "session_expired",
	failure.ErrBackendUnavailable: "service_down",
	failure.ErrTransient:          "request_failed",
	failure.ErrInvalidPhase:       "invalid_phase",
}

var kindStatus = map[error]int{
	failure.ErrValidation:         http.StatusBadRequest,
	failure.ErrAuth:               http.StatusUnauthorized,
	failure.ErrSessionExpired:     http.StatusUnauthorized,
	failure.ErrBackendUnavailable: http.StatusGatewayTimeout,
	failure.ErrTransient:          http.StatusBadGateway,
	failure.ErrInvalidPhase:       http.StatusConflict,
}

var errNotSignedIn = fmt.Errorf("%w: not signed in", failure.ErrSessionExpired)

func newErrorBody(err error) errorBody {
	kind := failure.Kind(err)
	name, ok := kindNames[kind]
	if !ok {
		name = "internal"
	}
	return errorBody{Error: err.Error(), Kind: name}
}

// statusFor maps a failure to the HTTP status of the local API.
func statusFor(err error) int {
	if status, ok := kindStatus[failure.Kind(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), newErrorBody(err))
}

func abortBadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: err.Error(), Kind: "validation"})
}
