package parse

import (
	"path"
	"regexp"
	"strings"
)

// leadingDigitsRe matches the numeric prefix of a room, e.g. "201" in "201B".
var leadingDigitsRe = regexp.MustCompile(`^\s*(\d+)`)

var floorNames = []string{
	"basement",
	"first floor",
	"second floor",
	"third floor",
	"fourth floor",
	"fifth floor",
	"sixth floor",
	"seventh floor",
	"eighth floor",
	"ninth floor",
}

// ParsedRoom holds what can be read from a room string.
type ParsedRoom struct {
	Room  string
	Floor int
}

// ParseRoom reads the floor from a raw room string. The floor
// is the first digit of the room number, so "201" is on floor 2 and "012" is
// in the basement. Rooms without a numeric prefix are reported as unparsable.
func ParseRoom(raw string) (ParsedRoom, bool) {
	room := strings.TrimSpace(raw)
	m := leadingDigitsRe.FindStringSubmatch(room)
	if m == nil {
		return ParsedRoom{Room: room}, false
	}
	floor := int(m[1][0] - '0')
	return ParsedRoom{Room: room, Floor: floor}, true
}

// RoomToFloor returns the floor name of a room ("second floor" for "201"),
// or false when the floor is unknown.
func RoomToFloor(raw string) (string, bool) {
	parsed, ok := ParseRoom(raw)
	if !ok || parsed.Floor >= len(floorNames) {
		return "", false
	}
	return floorNames[parsed.Floor], true
}

// FileExtension returns the lower-cased extension of a file name without the
// dot, or "" when the name has none.
func FileExtension(name string) string {
	ext := path.Ext(strings.TrimSpace(name))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
