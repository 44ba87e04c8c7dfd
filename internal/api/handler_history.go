package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultHistoryLimit = 50

// GetHistory handles GET /local/history, the jobs submitted from this client
// by the signed-in user, newest first.
func (h *Handler) GetHistory(c *gin.Context) {
	email, ok := h.requireUser(c)
	if !ok {
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: "limit must be a positive integer", Kind: "validation"})
			return
		}
		limit = n
	}

	receipts, err := h.store.ListReceipts(c.Request.Context(), email, limit)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Error: err.Error(), Kind: "internal"})
		return
	}
	c.JSON(http.StatusOK, receipts)
}

// requireUser aborts unless someone is signed in and history is enabled.
func (h *Handler) requireUser(c *gin.Context) (string, bool) {
	if h.store == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, errorBody{Error: "print history is disabled", Kind: "internal"})
		return "", false
	}
	email := h.session.Email()
	if email == "" {
		abortWithError(c, errNotSignedIn)
		return "", false
	}
	return email, true
}
