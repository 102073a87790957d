package store

import (
	"fmt"
	"time"

	"github.com/peterstace/simplefeatures/geom"
)

// Theme groups the locations and photos of one trip or subject.
type Theme struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	CreatedAt time.Time `json:"createdAt"`
	Locations []Location
}

func (*Theme) TableName() string {
	return "themes"
}

// Location is a named place within a theme. Names are unique per theme.
type Location struct {
	ID        uint       `json:"id" gorm:"primarykey"`
	Name      string     `json:"name" gorm:"size:100;not null;uniqueIndex:idx_location_name_theme"`
	Latitude  float64    `json:"lat"`
	Longitude float64    `json:"lng"`
	Point     geom.Point `json:"-"` // lng/lat point, stored as WKB
	ThemeID   uint       `json:"themeId" gorm:"not null;uniqueIndex:idx_location_name_theme"`
	Photos    []Photo
}

func (*Location) TableName() string {
	return "locations"
}

type Photo struct {
	ID         uint       `json:"id" gorm:"primarykey"`
	ImagePath  string     `json:"image" gorm:"size:255;not null"` // relative to the media dir, slash separated
	Caption    string     `json:"caption" gorm:"size:200"`
	TakenAt    *time.Time `json:"takenAt"`
	UploadedAt time.Time  `json:"uploadedAt" gorm:"autoCreateTime"`
	LocationID uint       `json:"locationId" gorm:"index:idx_photo_location_id"`
	ThemeID    uint       `json:"themeId" gorm:"index:idx_photo_theme_id"`
}

func (*Photo) TableName() string {
	return "photos"
}

// Models lists the tables migrated on Open.
var Models = []interface{}{
	&Theme{},
	&Location{},
	&Photo{},
}

func newPoint(lat, lng float64) (geom.Point, error) {
	if !(lat >= -90 && lat <= 90) || !(lng >= -180 && lng <= 180) {
		return geom.Point{}, fmt.Errorf("%w: %v, %v", ErrInvalidCoordinates, lat, lng)
	}
	return geom.NewPoint(geom.Coordinates{XY: geom.XY{X: lng, Y: lat}, Type: geom.DimXY})
}
