package mapview

import "github.com/olablt/gio-photomap/tiles"

// FitToBounds moves the viewport so every marker is visible.
// Without markers it returns ErrNoMarkers and leaves the viewport alone.
func (c *Controller) FitToBounds() error {
	if len(c.markers) == 0 {
		return ErrNoMarkers
	}
	var b tiles.Bounds
	for _, m := range c.markers {
		b = b.Extend(m.position)
	}
	return c.FitBounds(b)
}

// FitBounds centers b and picks the largest zoom at which it fits inside the padded viewport.
func (c *Controller) FitBounds(b tiles.Bounds) error {
	if b.IsEmpty() {
		return ErrEmptyBounds
	}
	zoom := c.zoomForBounds(b)
	x1, y1, x2, y2 := worldBox(b, zoom)
	center := tiles.WorldToLatLng((x1+x2)/2, (y1+y2)/2, zoom)
	c.log.Debug().Stringer("bounds", b).Int("zoom", zoom).Msg("fit bounds")
	c.SetView(center, zoom)
	return nil
}

func (c *Controller) zoomForBounds(b tiles.Bounds) int {
	w := float64(max(1, c.size.X-2*c.padding))
	h := float64(max(1, c.size.Y-2*c.padding))
	for z := c.maxZoom; z > c.minZoom; z-- {
		x1, y1, x2, y2 := worldBox(b, z)
		if x2-x1 <= w && y2-y1 <= h {
			return z
		}
	}
	return c.minZoom
}

// worldBox returns the north-west and south-east corners of b in world pixels at zoom.
func worldBox(b tiles.Bounds, zoom int) (x1, y1, x2, y2 float64) {
	x1, y1 = tiles.CalculateWorldCoordinates(tiles.LatLng{Lat: b.NorthEast.Lat, Lng: b.SouthWest.Lng}, zoom)
	x2, y2 = tiles.CalculateWorldCoordinates(tiles.LatLng{Lat: b.SouthWest.Lat, Lng: b.NorthEast.Lng}, zoom)
	return x1, y1, x2, y2
}
