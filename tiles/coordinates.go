package tiles

import (
	"image"
	"math"

	"github.com/wroge/wgs84"
)

const (
	TileSize           = 256
	earthCircumference = 40075016.686 // meters at equator
	// MaxLatitude is the northern edge of the square Web Mercator world.
	MaxLatitude = 85.05112878
)

var (
	toMercator   = wgs84.EPSG().Transform(4326, 3857)
	fromMercator = wgs84.EPSG().Transform(3857, 4326)
)

// Tile represents a map tile coordinates
type Tile struct {
	X, Y, Zoom int
}

// LatLng represents a geographical point
type LatLng struct {
	Lat, Lng float64
}

// IsZero reports whether ll is the 0,0 null island point, which services use for "no position".
func (ll LatLng) IsZero() bool {
	return ll.Lat == 0 && ll.Lng == 0
}

// WorldSize returns the width and height of the world in pixels at zoom.
func WorldSize(zoom int) float64 {
	return float64(TileSize) * math.Pow(2, float64(zoom))
}

// LatLngToTile converts geographical coordinates to tile coordinates
func LatLngToTile(ll LatLng, zoom int) Tile {
	x, y := CalculateWorldCoordinates(ll, zoom)
	return ConstrainTile(Tile{X: int(x) / TileSize, Y: int(y) / TileSize, Zoom: zoom})
}

// TileToLatLng converts tile coordinates to geographical coordinates (returns north-west corner of tile)
func TileToLatLng(tile Tile) LatLng {
	return WorldToLatLng(float64(tile.X*TileSize), float64(tile.Y*TileSize), tile.Zoom)
}

// CalculateWorldCoordinates converts geographical coordinates to world pixel coordinates at given zoom level.
// The origin is the north-west corner of the world; latitudes beyond the Mercator limit are clamped.
// Longitude maps linearly and is not wrapped.
func CalculateWorldCoordinates(ll LatLng, zoom int) (float64, float64) {
	lat := math.Max(-MaxLatitude, math.Min(MaxLatitude, ll.Lat))
	_, my, _ := toMercator(0, lat, 0)
	size := WorldSize(zoom)
	half := earthCircumference / 2
	worldX := (ll.Lng + 180) / 360 * size
	worldY := (half - my) / earthCircumference * size
	return worldX, worldY
}

// WorldToLatLng converts world pixel coordinates back to geographical coordinates.
// x outside the world gives longitudes beyond ±180 rather than wrapping.
func WorldToLatLng(worldX, worldY float64, zoom int) LatLng {
	size := WorldSize(zoom)
	half := earthCircumference / 2
	my := half - worldY/size*earthCircumference
	_, lat, _ := fromMercator(0, my, 0)
	return LatLng{Lat: lat, Lng: worldX/size*360 - 180}
}

// CalculateMetersPerPixel calculates the meters per pixel at a given latitude and zoom level
func CalculateMetersPerPixel(latitude float64, zoom int) float64 {
	return earthCircumference * math.Cos(latitude*math.Pi/180) / WorldSize(zoom)
}

// ConstrainTile ensures tile coordinates are within valid bounds for the zoom level
func ConstrainTile(tile Tile) Tile {
	maxTile := int(math.Pow(2, float64(tile.Zoom))) - 1
	tile.X = max(0, min(tile.X, maxTile))
	tile.Y = max(0, min(tile.Y, maxTile))
	return tile
}

// CalculateVisibleTiles calculates which tiles are visible given a center point and screen size.
// Tiles outside the world are dropped rather than clamped so none is returned twice.
func CalculateVisibleTiles(center LatLng, zoom int, screenSize image.Point) []Tile {
	centerTile := LatLngToTile(center, zoom)
	tilesX := (screenSize.X / TileSize) + 2 // Add buffer tiles
	tilesY := (screenSize.Y / TileSize) + 2

	startX := centerTile.X - tilesX/2
	startY := centerTile.Y - tilesY/2
	maxTile := int(math.Pow(2, float64(zoom))) - 1

	visibleTiles := make([]Tile, 0, tilesX*tilesY)
	for x := startX; x < startX+tilesX; x++ {
		for y := startY; y < startY+tilesY; y++ {
			if x < 0 || y < 0 || x > maxTile || y > maxTile {
				continue
			}
			visibleTiles = append(visibleTiles, Tile{X: x, Y: y, Zoom: zoom})
		}
	}
	return visibleTiles
}
