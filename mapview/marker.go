package mapview

import (
	"github.com/olablt/gio-photomap/page"
	"github.com/olablt/gio-photomap/tiles"
)

// Marker is a pin drawn on the map at a fixed position.
type Marker struct {
	position tiles.LatLng
	title    string
	clicks   page.Feed[*Marker]
	attached bool
}

func (m *Marker) Position() tiles.LatLng { return m.position }

func (m *Marker) Title() string { return m.title }

// Attached reports whether the marker is still shown on its map.
func (m *Marker) Attached() bool { return m.attached }

// OnClick registers fn for clicks on the marker.
func (m *Marker) OnClick(fn func(*Marker)) (unsubscribe func()) {
	return m.clicks.Subscribe(fn)
}

// Click delivers a click to the handlers. Detached markers ignore clicks.
func (m *Marker) Click() {
	if !m.attached {
		return
	}
	m.clicks.Send(m)
}

func (m *Marker) detach() {
	m.attached = false
}
