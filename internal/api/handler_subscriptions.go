package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"webprint-client/internal/model"
)

type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

// PutSubscription registers a browser push subscription for the signed-in
// user, replacing the keys of a known endpoint.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}
	email, ok := h.requireUser(c)
	if !ok {
		return
	}

	subscription := model.PushSubscription{
		Endpoint: req.Endpoint,
		Email:    email,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}
	if err := h.store.UpsertSubscription(c.Request.Context(), &subscription); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Error: err.Error(), Kind: "internal"})
		return
	}
	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription removes one of the signed-in user's subscriptions.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}
	email, ok := h.requireUser(c)
	if !ok {
		return
	}

	if err := h.store.DeleteSubscription(c.Request.Context(), email, req.Endpoint); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Error: err.Error(), Kind: "internal"})
		return
	}
	c.Status(http.StatusNoContent)
}
