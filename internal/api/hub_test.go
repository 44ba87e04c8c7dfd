package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webprint-client/internal/selection"
	"webprint-client/internal/session"
)

func drain(ch <-chan Event) []Event {
	var out []Event
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestHub_JoinReplaysLatestState(t *testing.T) {
	h := NewHub()
	h.SessionChanged(session.Snapshot{})
	h.SessionChanged(session.Snapshot{Authenticated: true, Email: "jdoe@students.calvin.edu"})
	h.SetFill("science", "#b4b4b4")
	h.SetFill("library", "#007095")
	h.ShowList(selection.ListState{Loaded: true, Selected: "library"})
	h.SetFill("science", "#4dafcf")

	events, leave := h.Join(4)
	defer leave()

	got := drain(events)
	require.Len(t, got, 4)
	assert.Equal(t, EventSession, got[0].Name)
	assert.True(t, got[0].Data.(sessionView).Authenticated)
	assert.Equal(t, EventList, got[1].Name)
	assert.Equal(t, FillEvent{Region: "library", Color: "#007095"}, got[2].Data)
	assert.Equal(t, FillEvent{Region: "science", Color: "#4dafcf"}, got[3].Data)

	h.ClearFileInput()
	live := drain(events)
	require.Len(t, live, 1)
	assert.Equal(t, EventClearFile, live[0].Name)
	assert.Greater(t, live[0].Version, got[3].Version)
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := NewHub()
	slow, leaveSlow := h.Join(1)
	fast, leaveFast := h.Join(8)
	defer leaveFast()
	require.Equal(t, 2, h.Clients())

	h.SignedOut()
	h.SignedOut()
	h.SignedOut()

	assert.Equal(t, 1, h.Clients())
	assert.Len(t, drain(slow), 1)
	_, open := <-slow
	assert.False(t, open)
	assert.Len(t, drain(fast), 3)

	leaveSlow()
	assert.Equal(t, 1, h.Clients())
}

func TestHub_Failed(t *testing.T) {
	h := NewHub()
	events, leave := h.Join(1)
	defer leave()

	h.Failed(errNotSignedIn)

	got := drain(events)
	require.Len(t, got, 1)
	assert.Equal(t, EventFailure, got[0].Name)
	assert.Equal(t, "session_expired", got[0].Data.(errorBody).Kind)

	late, leaveLate := h.Join(1)
	defer leaveLate()
	assert.Empty(t, drain(late), "failures are not replayed")
}
