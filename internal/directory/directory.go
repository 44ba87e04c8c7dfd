// Package directory loads the static campus printer directory.
package directory

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Printer is one printer as listed in the directory document.
type Printer struct {
	Room   string `json:"room"`
	Public bool   `json:"public"`
	Type   string `json:"type"`
	Color  bool   `json:"color"`
}

// BuildingGroup is a building (or part of one) with the printers inside it.
// ID matches the region id of the building on the campus map.
type BuildingGroup struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	Printers    []Printer `json:"printers"`
}

// Directory is the immutable, display-name ordered list of building groups.
type Directory struct {
	groups []BuildingGroup
	byID   map[string]int
}

// Load decodes a directory document and orders its groups by display name.
func Load(r io.Reader) (*Directory, error) {
	var groups []BuildingGroup
	if err := json.NewDecoder(r).Decode(&groups); err != nil {
		return nil, fmt.Errorf("failed to decode printer directory: %w", err)
	}
	return New(groups)
}

// LoadFile reads the directory document at path.
func LoadFile(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// New builds a directory from groups. Group ids must be unique and non-empty.
func New(groups []BuildingGroup) (*Directory, error) {
	sorted := make([]BuildingGroup, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DisplayName < sorted[j].DisplayName
	})

	byID := make(map[string]int, len(sorted))
	for i, g := range sorted {
		if strings.TrimSpace(g.ID) == "" {
			return nil, fmt.Errorf("building group %q has no id", g.DisplayName)
		}
		if _, dup := byID[g.ID]; dup {
			return nil, fmt.Errorf("duplicate building group id %q", g.ID)
		}
		byID[g.ID] = i
	}
	return &Directory{groups: sorted, byID: byID}, nil
}

// Groups returns the groups in display-name order.
func (d *Directory) Groups() []BuildingGroup {
	out := make([]BuildingGroup, len(d.groups))
	copy(out, d.groups)
	return out
}

// Group looks a group up by id.
func (d *Directory) Group(id string) (BuildingGroup, bool) {
	i, ok := d.byID[id]
	if !ok {
		return BuildingGroup{}, false
	}
	return d.groups[i], true
}

// Len returns the number of groups.
func (d *Directory) Len() int {
	return len(d.groups)
}
