package tiles

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// LocalTileProvider draws offline placeholder tiles showing the tile address,
// used when the tile server cannot be reached.
type LocalTileProvider struct {
	fill  color.RGBA
	grid  color.RGBA
	label color.RGBA
}

// NewLocalTileProvider returns light placeholders for the roadmap tile set.
func NewLocalTileProvider() *LocalTileProvider {
	return &LocalTileProvider{
		fill:  color.RGBA{R: 0xe8, G: 0xe6, B: 0xe1, A: 0xff},
		grid:  color.RGBA{R: 0xc9, G: 0xc6, B: 0xbf, A: 0xff},
		label: color.RGBA{R: 0x5f, G: 0x63, B: 0x68, A: 0xff},
	}
}

// NewDarkTileProvider returns placeholders for the satellite tile set.
func NewDarkTileProvider() *LocalTileProvider {
	return &LocalTileProvider{
		fill:  color.RGBA{R: 0x28, G: 0x30, B: 0x38, A: 0xff},
		grid:  color.RGBA{R: 0x3c, G: 0x46, B: 0x50, A: 0xff},
		label: color.RGBA{R: 0xb0, G: 0xb8, B: 0xc0, A: 0xff},
	}
}

func (p *LocalTileProvider) GetTile(tile Tile) (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))
	draw.Draw(img, img.Bounds(), image.NewUniform(p.fill), image.Point{}, draw.Src)

	// a quarter grid plus the tile edge, so the placeholders line up when panning
	grid := image.NewUniform(p.grid)
	for i := 0; i < TileSize; i += TileSize / 4 {
		draw.Draw(img, image.Rect(i, 0, i+1, TileSize), grid, image.Point{}, draw.Src)
		draw.Draw(img, image.Rect(0, i, TileSize, i+1), grid, image.Point{}, draw.Src)
	}

	p.drawLabel(img, fmt.Sprintf("%d/%d/%d", tile.Zoom, tile.X, tile.Y), TileSize/2-8)
	p.drawLabel(img, "offline", TileSize/2+10)
	return img, nil
}

// drawLabel writes s horizontally centered with its baseline at y.
func (p *LocalTileProvider) drawLabel(img *image.RGBA, s string, y int) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(p.label),
		Face: basicfont.Face7x13,
	}
	width := d.MeasureString(s)
	d.Dot = fixed.Point26_6{
		X: (fixed.I(TileSize) - width) / 2,
		Y: fixed.I(y),
	}
	d.DrawString(s)
}
