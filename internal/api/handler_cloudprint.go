package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"webprint-client/internal/failure"
	"webprint-client/internal/gateway"
)

// CloudPrint is the cloud print part of the print API.
type CloudPrint interface {
	CloudPrintStatus(ctx context.Context) (*gateway.CloudPrintStatus, error)
	RevokeCloudPrint(ctx context.Context) error
}

// GetCloudPrint handles GET /local/cloudprint.
func (h *Handler) GetCloudPrint(c *gin.Context) {
	if !h.session.Authenticated() {
		abortWithError(c, errNotSignedIn)
		return
	}
	status, err := h.cloudPrint.CloudPrintStatus(c.Request.Context())
	if err != nil {
		abortWithError(c, gateway.Classify(err, failure.ErrSessionExpired, http.StatusUnauthorized))
		return
	}
	c.JSON(http.StatusOK, status)
}

// RevokeCloudPrint handles POST /local/cloudprint/revoke.
func (h *Handler) RevokeCloudPrint(c *gin.Context) {
	if !h.session.Authenticated() {
		abortWithError(c, errNotSignedIn)
		return
	}
	if err := h.cloudPrint.RevokeCloudPrint(c.Request.Context()); err != nil {
		abortWithError(c, gateway.Classify(err, failure.ErrSessionExpired, http.StatusUnauthorized))
		return
	}
	c.Status(http.StatusNoContent)
}
