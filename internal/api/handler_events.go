package api

import (
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"
)

const eventBuffer = 64

// Events handles GET /local/events, a server-sent event stream of every
// view update. The stream starts with the current state of each surface.
func (h *Handler) Events(c *gin.Context) {
	events, leave := h.hub.Join(eventBuffer)
	defer leave()

	slog.Debug("view stream connected", "client", c.ClientIP(), "clients", h.hub.Clients())
	c.Header("Cache-Control", "no-store")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				slog.Info("dropping slow view stream client", "client", c.ClientIP())
				return false
			}
			c.SSEvent(ev.Name, ev)
			return true
		case <-ctx.Done():
			return false
		}
	})
	slog.Debug("view stream disconnected", "client", c.ClientIP())
}
