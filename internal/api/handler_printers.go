package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"webprint-client/internal/directory"
)

type groupView struct {
	ID          string                     `json:"id"`
	DisplayName string                     `json:"displayName"`
	Printers    []directory.DisplayPrinter `json:"printers"`
}

// GetPrinters handles GET /local/printers. Every printer is listed, private
// ones included, with its display fields.
func (h *Handler) GetPrinters(c *gin.Context) {
	if h.directory == nil {
		c.Header("Cache-Control", "no-store")
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, errorBody{Error: "printer directory is not loaded", Kind: "internal"})
		return
	}

	groups := h.directory.Groups()
	out := make([]groupView, 0, len(groups))
	for _, g := range groups {
		out = append(out, groupView{
			ID:          g.ID,
			DisplayName: g.DisplayName,
			Printers:    directory.VisiblePrinters(g, true),
		})
	}
	c.JSON(http.StatusOK, out)
}

type regionRequest struct {
	ID string `json:"id" binding:"required"`
}

func (h *Handler) bindRegion(c *gin.Context) (string, bool) {
	var req regionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return "", false
	}
	return req.ID, true
}

// GetSelection handles GET /local/selection.
func (h *Handler) GetSelection(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state": h.selection.State(),
		"list":  h.selection.List(),
	})
}

// SelectFromList handles POST /local/selection/list.
func (h *Handler) SelectFromList(c *gin.Context) {
	if id, ok := h.bindRegion(c); ok {
		h.selection.SelectFromList(id)
		c.JSON(http.StatusAccepted, h.selection.State())
	}
}

// SelectFromMap handles POST /local/selection/map.
func (h *Handler) SelectFromMap(c *gin.Context) {
	if id, ok := h.bindRegion(c); ok {
		h.selection.SelectFromMap(id)
		c.JSON(http.StatusAccepted, h.selection.State())
	}
}

// MapLoaded handles POST /local/map/loaded.
func (h *Handler) MapLoaded(c *gin.Context) {
	h.selection.MapLoaded()
	c.Status(http.StatusAccepted)
}

// PointerEnter handles POST /local/map/enter.
func (h *Handler) PointerEnter(c *gin.Context) {
	if id, ok := h.bindRegion(c); ok {
		h.selection.PointerEnter(id)
		c.Status(http.StatusAccepted)
	}
}

// PointerLeave handles POST /local/map/leave.
func (h *Handler) PointerLeave(c *gin.Context) {
	if id, ok := h.bindRegion(c); ok {
		h.selection.PointerLeave(id)
		c.Status(http.StatusAccepted)
	}
}

type showPrivateRequest struct {
	Show *bool `json:"show" binding:"required"`
}

// SetShowPrivate handles PUT /local/printers/private.
func (h *Handler) SetShowPrivate(c *gin.Context) {
	var req showPrivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}
	h.selection.SetShowPrivate(*req.Show)
	c.JSON(http.StatusOK, h.selection.State())
}
