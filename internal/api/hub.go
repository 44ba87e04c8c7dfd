package api

import (
	"sort"
	"sync"

	"webprint-client/internal/selection"
	"webprint-client/internal/session"
	"webprint-client/internal/upload"
)

// Event names on the view stream.
const (
	EventSession   = "session"
	EventUpload    = "upload"
	EventFailure   = "failure"
	EventList      = "list"
	EventFill      = "fill"
	EventSignedOut = "signedOut"
	EventClearFile = "clearFile"
)

// Event is one message on the view stream.
type Event struct {
	Version int    `json:"version"`
	Name    string `json:"name"`
	Data    any    `json:"data"`
}

// FillEvent paints one map region.
type FillEvent struct {
	Region string `json:"region"`
	Color  string `json:"color"`
}

// Hub fans state changes out to every connected renderer. It is the list and
// map surface of the selection synchronizer and the change sink of the
// session and upload pipeline. A client that joins late first receives the
// latest state of every surface.
type Hub struct {
	mu      sync.Mutex
	version int
	nextID  int
	clients map[int]chan Event

	latest map[string]Event
	fills  map[string]Event
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[int]chan Event),
		latest:  make(map[string]Event),
		fills:   make(map[string]Event),
	}
}

// Join registers a client with an outbox of the given size and replays the
// current state into it. leave unregisters the client and closes the outbox.
func (h *Hub) Join(buffer int) (events <-chan Event, leave func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var replay []Event
	for _, name := range []string{EventSession, EventUpload, EventList} {
		if ev, ok := h.latest[name]; ok {
			replay = append(replay, ev)
		}
	}
	regions := make([]string, 0, len(h.fills))
	for region := range h.fills {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	for _, region := range regions {
		replay = append(replay, h.fills[region])
	}

	ch := make(chan Event, buffer+len(replay))
	for _, ev := range replay {
		ch <- ev
	}

	id := h.nextID
	h.nextID++
	h.clients[id] = ch

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.clients[id]; ok {
			close(c)
			delete(h.clients, id)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish sends an event to every client. Clients whose outbox is full are
// dropped.
func (h *Hub) Publish(name string, data any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.publishLocked(name, data)
}

func (h *Hub) publishLocked(name string, data any) Event {
	h.version++
	ev := Event{Version: h.version, Name: name, Data: data}
	for id, ch := range h.clients {
		select {
		case ch <- ev:
		default:
			close(ch)
			delete(h.clients, id)
		}
	}
	return ev
}

// ShowList publishes the printer list.
func (h *Hub) ShowList(s selection.ListState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest[EventList] = h.publishLocked(EventList, s)
}

// SetFill publishes the paint of one map region.
func (h *Hub) SetFill(region, color string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fills[region] = h.publishLocked(EventFill, FillEvent{Region: region, Color: color})
}

// SessionChanged publishes the session view.
func (h *Hub) SessionChanged(s session.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest[EventSession] = h.publishLocked(EventSession, newSessionView(s))
}

// UploadChanged publishes the upload pipeline state.
func (h *Hub) UploadChanged(s upload.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest[EventUpload] = h.publishLocked(EventUpload, s)
}

// Failed publishes a failure that has no request to answer.
func (h *Hub) Failed(err error) {
	h.Publish(EventFailure, newErrorBody(err))
}

// SignedOut tells renderers to leave the authenticated view.
func (h *Hub) SignedOut() {
	h.Publish(EventSignedOut, nil)
}

// ClearFileInput tells renderers to reset their file picker.
func (h *Hub) ClearFileInput() {
	h.Publish(EventClearFile, nil)
}
