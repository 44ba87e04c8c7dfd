package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"webprint-client/internal/directory"
	"webprint-client/internal/selection"
	"webprint-client/internal/session"
	"webprint-client/internal/store"
	"webprint-client/internal/upload"
)

// Deps are the components the local API exposes. Directory is nil when the
// printer directory failed to load. Store is nil when print history is
// disabled.
type Deps struct {
	Session    *session.State
	Pipeline   *upload.Pipeline
	Selection  *selection.Synchronizer
	Directory  *directory.Directory
	CloudPrint CloudPrint
	Store      store.Store
	Hub        *Hub
	Webpush    *webpush.Options
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	session    *session.State
	pipeline   *upload.Pipeline
	selection  *selection.Synchronizer
	directory  *directory.Directory
	cloudPrint CloudPrint
	store      store.Store
	hub        *Hub
	webpush    *webpush.Options
	now        func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	return &Handler{
		session:    d.Session,
		pipeline:   d.Pipeline,
		selection:  d.Selection,
		directory:  d.Directory,
		cloudPrint: d.CloudPrint,
		store:      d.Store,
		hub:        d.Hub,
		webpush:    d.Webpush,
		now:        time.Now,
	}
}
