package mapview

import "github.com/olablt/gio-photomap/tiles"

type EventKind int

const (
	// BoundsChanged is sent after the center, zoom or viewport size changed.
	BoundsChanged EventKind = iota
	MapTypeChanged
	MarkerClicked
)

func (k EventKind) String() string {
	switch k {
	case BoundsChanged:
		return "bounds_changed"
	case MapTypeChanged:
		return "maptypeid_changed"
	case MarkerClicked:
		return "marker_click"
	}
	return "unknown"
}

// Event is what Controller subscribers receive. Only the fields matching Kind are set.
type Event struct {
	Kind    EventKind
	Bounds  tiles.Bounds
	MapType MapType
	Marker  *Marker
}
