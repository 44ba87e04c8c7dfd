// Package selection keeps the printer list and the campus map showing the same
// building group.
package selection

import (
	"log/slog"
	"sync"
	"time"

	"webprint-client/internal/directory"
)

// DefaultHoverDelay is how long the pointer must stay on a region before it
// is previewed.
const DefaultHoverDelay = 100 * time.Millisecond

// ListView renders the printer list.
type ListView interface {
	ShowList(ListState)
}

// MapView paints regions of the campus map. Region ids are building group ids.
type MapView interface {
	SetFill(regionID, color string)
}

// Scheduler runs f once after d. Scheduled tasks are never cancelled.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type timeScheduler struct{}

func (timeScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// Visual is the paint state of a map region.
type Visual int

const (
	VisualDefault Visual = iota
	VisualHovered
	VisualSelected
)

// Colors are the fills used for each Visual.
type Colors struct {
	Default  string
	Hovered  string
	Selected string
}

// DefaultColors returns the stock map palette.
func DefaultColors() Colors {
	return Colors{Default: "#b4b4b4", Hovered: "#4dafcf", Selected: "#007095"}
}

func (c Colors) fill(v Visual) string {
	switch v {
	case VisualSelected:
		return c.Selected
	case VisualHovered:
		return c.Hovered
	default:
		return c.Default
	}
}

// Config configures a Synchronizer.
type Config struct {
	// DefaultGroup is selected when the directory loads with nothing selected.
	DefaultGroup string
	HoverDelay   time.Duration
	Colors       Colors
	Scheduler    Scheduler
}

// GroupOption is one entry of the building picker.
type GroupOption struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// ListState is everything the list surface shows.
type ListState struct {
	Loaded      bool                       `json:"loaded"`
	LoadError   string                     `json:"loadError,omitempty"`
	Groups      []GroupOption              `json:"groups"`
	Selected    string                     `json:"selected"`
	Active      string                     `json:"active"`
	ShowPrivate bool                       `json:"showPrivate"`
	Printers    []directory.DisplayPrinter `json:"printers"`
}

// State is a snapshot of the selection.
type State struct {
	Selected       string `json:"selected"`
	Active         string `json:"active"`
	MapInteractive bool   `json:"mapInteractive"`
	ShowPrivate    bool   `json:"showPrivate"`
}

type command func(s *Synchronizer)

type fill struct {
	region string
	color  string
}

// update is what one command publishes to the views.
type update struct {
	list  *ListState
	fills []fill
}

// listKey holds the inputs of the list surface. The list is republished only
// when it changes.
type listKey struct {
	loaded      bool
	loadErr     string
	selected    string
	active      string
	showPrivate bool
}

// Synchronizer owns the selected and active building groups. All commands go
// through one dispatcher; a command issued while another is being applied or
// published, including from inside a view callback, is queued and runs after
// it.
type Synchronizer struct {
	list    ListView
	mapView MapView
	cfg     Config

	mu       sync.Mutex
	pending  []command
	draining bool

	dir         *directory.Directory
	loadErr     error
	mapLoaded   bool
	selected    string
	active      string
	hovering    map[string]bool
	showPrivate bool

	published *listKey
	painted   map[string]string
}

// New creates a synchronizer publishing to list and mapView.
func New(list ListView, mapView MapView, cfg Config) *Synchronizer {
	if cfg.HoverDelay <= 0 {
		cfg.HoverDelay = DefaultHoverDelay
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = timeScheduler{}
	}
	def := DefaultColors()
	if cfg.Colors.Default == "" {
		cfg.Colors.Default = def.Default
	}
	if cfg.Colors.Hovered == "" {
		cfg.Colors.Hovered = def.Hovered
	}
	if cfg.Colors.Selected == "" {
		cfg.Colors.Selected = def.Selected
	}
	return &Synchronizer{
		list:     list,
		mapView:  mapView,
		cfg:      cfg,
		hovering: make(map[string]bool),
		painted:  make(map[string]string),
	}
}

// DirectoryLoaded installs the printer directory. When nothing is selected
// yet, the default group is selected if the directory has it. An earlier
// selection of a group the directory does not list counts as nothing selected.
func (s *Synchronizer) DirectoryLoaded(dir *directory.Directory) {
	s.dispatch(func(s *Synchronizer) {
		s.dir = dir
		s.loadErr = nil
		if _, ok := dir.Group(s.selected); s.selected != "" && !ok {
			slog.Warn("dropping selection of unknown building group", "id", s.selected)
			s.selected = ""
			s.active = ""
		}
		if s.selected == "" {
			if _, ok := dir.Group(s.cfg.DefaultGroup); ok {
				s.selected = s.cfg.DefaultGroup
				s.active = s.cfg.DefaultGroup
			}
		}
		slog.Info("printer directory loaded", "groups", dir.Len(), "selected", s.selected)
	})
}

// DirectoryFailed records that the directory could not be loaded.
func (s *Synchronizer) DirectoryFailed(err error) {
	s.dispatch(func(s *Synchronizer) {
		s.loadErr = err
		slog.Error("printer directory failed to load", "error", err)
	})
}

// MapLoaded marks the map asset as ready to paint.
func (s *Synchronizer) MapLoaded() {
	s.dispatch(func(s *Synchronizer) {
		s.mapLoaded = true
	})
}

// SelectFromList commits a selection made in the list.
func (s *Synchronizer) SelectFromList(id string) {
	s.dispatch(func(s *Synchronizer) { s.selectLocked(id, "list") })
}

// SelectFromMap commits a selection made on the map.
func (s *Synchronizer) SelectFromMap(id string) {
	s.dispatch(func(s *Synchronizer) {
		if !s.interactiveLocked() {
			return
		}
		s.selectLocked(id, "map")
	})
}

// PointerEnter starts a hover over a map region. The region is previewed if
// the pointer is still on it when the hover delay expires.
func (s *Synchronizer) PointerEnter(id string) {
	s.dispatch(func(s *Synchronizer) {
		if !s.interactiveLocked() || !s.knownLocked(id) {
			return
		}
		s.hovering[id] = true
		s.cfg.Scheduler.AfterFunc(s.cfg.HoverDelay, func() {
			s.dispatch(func(s *Synchronizer) { s.hoverExpiredLocked(id) })
		})
	})
}

// PointerLeave ends a hover over a map region.
func (s *Synchronizer) PointerLeave(id string) {
	s.dispatch(func(s *Synchronizer) {
		if !s.hovering[id] {
			return
		}
		delete(s.hovering, id)
		if id != s.selected {
			s.active = s.selected
		}
	})
}

// SetShowPrivate toggles private printers in the list.
func (s *Synchronizer) SetShowPrivate(show bool) {
	s.dispatch(func(s *Synchronizer) {
		s.showPrivate = show
	})
}

// State returns the current selection.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Selected:       s.selected,
		Active:         s.active,
		MapInteractive: s.interactiveLocked(),
		ShowPrivate:    s.showPrivate,
	}
}

// List returns what the list surface currently shows.
func (s *Synchronizer) List() ListState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listStateLocked()
}

// RegionVisual returns the paint state of a map region.
func (s *Synchronizer) RegionVisual(id string) Visual {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visualLocked(id)
}

func (s *Synchronizer) dispatch(c command) {
	s.mu.Lock()
	s.pending = append(s.pending, c)
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	for len(s.pending) > 0 {
		next := s.pending[0]
		s.pending = s.pending[1:]
		next(s)
		u := s.diffLocked()

		s.mu.Unlock()
		s.publish(u)
		s.mu.Lock()
	}
	s.draining = false
	s.mu.Unlock()
}

func (s *Synchronizer) publish(u update) {
	if u.list != nil && s.list != nil {
		s.list.ShowList(*u.list)
	}
	if s.mapView != nil {
		for _, f := range u.fills {
			s.mapView.SetFill(f.region, f.color)
		}
	}
}

// diffLocked works out what changed in the views since the last publish.
func (s *Synchronizer) diffLocked() update {
	var u update

	key := s.listKeyLocked()
	if s.published == nil || *s.published != key {
		s.published = &key
		list := s.listStateLocked()
		u.list = &list
	}

	if s.interactiveLocked() {
		for _, g := range s.dir.Groups() {
			color := s.cfg.Colors.fill(s.visualLocked(g.ID))
			if s.painted[g.ID] != color {
				s.painted[g.ID] = color
				u.fills = append(u.fills, fill{region: g.ID, color: color})
			}
		}
	}
	return u
}

func (s *Synchronizer) selectLocked(id, source string) {
	if s.dir != nil && !s.knownLocked(id) {
		slog.Debug("ignoring selection of unknown group", "group", id, "source", source)
		return
	}
	s.selected = id
	s.active = id
}

func (s *Synchronizer) hoverExpiredLocked(id string) {
	if s.hovering[id] && id != s.selected {
		s.active = id
	}
}

func (s *Synchronizer) interactiveLocked() bool {
	return s.dir != nil && s.mapLoaded
}

func (s *Synchronizer) knownLocked(id string) bool {
	if s.dir == nil {
		return false
	}
	_, ok := s.dir.Group(id)
	return ok
}

func (s *Synchronizer) visualLocked(id string) Visual {
	switch {
	case id == s.selected:
		return VisualSelected
	case s.hovering[id]:
		return VisualHovered
	default:
		return VisualDefault
	}
}

func (s *Synchronizer) listKeyLocked() listKey {
	key := listKey{
		loaded:      s.dir != nil,
		selected:    s.selected,
		active:      s.active,
		showPrivate: s.showPrivate,
	}
	if s.loadErr != nil {
		key.loadErr = s.loadErr.Error()
	}
	return key
}

func (s *Synchronizer) listStateLocked() ListState {
	key := s.listKeyLocked()
	out := ListState{
		Loaded:      key.loaded,
		LoadError:   key.loadErr,
		Selected:    s.selected,
		Active:      s.active,
		ShowPrivate: s.showPrivate,
	}
	if s.dir == nil {
		return out
	}
	for _, g := range s.dir.Groups() {
		out.Groups = append(out.Groups, GroupOption{ID: g.ID, DisplayName: g.DisplayName})
	}
	if g, ok := s.dir.Group(s.active); ok {
		out.Printers = directory.VisiblePrinters(g, s.showPrivate)
	}
	return out
}
