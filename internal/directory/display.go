package directory

import "webprint-client/internal/parse"

// DisplayPrinter is a printer with its presentation fields.
type DisplayPrinter struct {
	Printer
	DisplayFloor  string `json:"displayFloor"`
	DisplayRoom   string `json:"displayRoom"`
	DisplayPublic string `json:"displayPublic"`
	DisplayType   string `json:"displayType"`
}

// Format derives the presentation fields of a printer. Rooms with an unknown
// floor keep the bare room string and an empty floor.
func Format(p Printer) DisplayPrinter {
	out := DisplayPrinter{Printer: p}

	if floor, ok := parse.RoomToFloor(p.Room); ok {
		out.DisplayFloor = floor
		out.DisplayRoom = "room " + p.Room
	} else {
		out.DisplayRoom = p.Room
	}

	if !p.Public {
		out.DisplayPublic = "- private"
	}

	// ex: "MFD printer", "Laser color printer"
	if p.Color {
		out.DisplayType = p.Type + " color printer"
	} else {
		out.DisplayType = p.Type + " printer"
	}
	return out
}

// VisiblePrinters formats the printers of g, leaving out private printers
// unless showPrivate is set.
func VisiblePrinters(g BuildingGroup, showPrivate bool) []DisplayPrinter {
	out := make([]DisplayPrinter, 0, len(g.Printers))
	for _, p := range g.Printers {
		if !p.Public && !showPrivate {
			continue
		}
		out = append(out, Format(p))
	}
	return out
}
