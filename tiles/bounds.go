package tiles

import "fmt"

// Bounds is a geographic rectangle. The zero value is empty and grows with Extend and Union.
// Rectangles crossing the antimeridian are not represented.
type Bounds struct {
	SouthWest LatLng
	NorthEast LatLng
	valid     bool
}

// NewBounds returns the smallest bounds containing both corners.
func NewBounds(a, b LatLng) Bounds {
	return Bounds{}.Extend(a).Extend(b)
}

// IsEmpty reports whether no point has been added.
func (b Bounds) IsEmpty() bool {
	return !b.valid
}

// Extend returns b grown to include ll.
func (b Bounds) Extend(ll LatLng) Bounds {
	if !b.valid {
		return Bounds{SouthWest: ll, NorthEast: ll, valid: true}
	}
	b.SouthWest.Lat = min(b.SouthWest.Lat, ll.Lat)
	b.SouthWest.Lng = min(b.SouthWest.Lng, ll.Lng)
	b.NorthEast.Lat = max(b.NorthEast.Lat, ll.Lat)
	b.NorthEast.Lng = max(b.NorthEast.Lng, ll.Lng)
	return b
}

// Union returns the smallest bounds containing b and other.
func (b Bounds) Union(other Bounds) Bounds {
	if !other.valid {
		return b
	}
	return b.Extend(other.SouthWest).Extend(other.NorthEast)
}

// Contains reports whether ll lies inside b, edges included.
func (b Bounds) Contains(ll LatLng) bool {
	if !b.valid {
		return false
	}
	return ll.Lat >= b.SouthWest.Lat && ll.Lat <= b.NorthEast.Lat &&
		ll.Lng >= b.SouthWest.Lng && ll.Lng <= b.NorthEast.Lng
}

// Center returns the midpoint of b in degrees.
func (b Bounds) Center() LatLng {
	return LatLng{
		Lat: (b.SouthWest.Lat + b.NorthEast.Lat) / 2,
		Lng: (b.SouthWest.Lng + b.NorthEast.Lng) / 2,
	}
}

func (b Bounds) String() string {
	if !b.valid {
		return "empty"
	}
	return fmt.Sprintf("%.6f,%.6f..%.6f,%.6f", b.SouthWest.Lat, b.SouthWest.Lng, b.NorthEast.Lat, b.NorthEast.Lng)
}
