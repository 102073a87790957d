package tiles

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// RoadmapURL is the OpenStreetMap standard layer.
	RoadmapURL = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"
	// SatelliteURL is the Esri World Imagery layer; note the y/x order.
	SatelliteURL = "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}"

	defaultUserAgent = "gio-photomap/1.0 (+https://github.com/olablt/gio-photomap)"
)

// URLTileProvider downloads tiles from an XYZ URL template containing {z}, {x} and {y}.
type URLTileProvider struct {
	template  string
	userAgent string
	referer   string
	client    *http.Client
	log       zerolog.Logger
}

func NewURLTileProvider(template, userAgent string, log zerolog.Logger) *URLTileProvider {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &URLTileProvider{
		template:  template,
		userAgent: userAgent,
		client:    &http.Client{Timeout: 15 * time.Second},
		log:       log.With().Str("component", "tiles.http").Logger(),
	}
}

// SetReferer sets the Referer header some tile servers require.
func (p *URLTileProvider) SetReferer(referer string) {
	p.referer = referer
}

func (p *URLTileProvider) GetTile(tile Tile) (image.Image, error) {
	return p.GetTileContext(context.Background(), tile)
}

// GetTileContext fetches and decodes one tile.
func (p *URLTileProvider) GetTileContext(ctx context.Context, tile Tile) (image.Image, error) {
	url := p.GetTileURL(tile)
	p.log.Debug().Str("url", url).Msg("requesting tile")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for tile %v: %w", tile, err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "image/png,image/jpeg,*/*")
	if p.referer != "" {
		req.Header.Set("Referer", p.referer)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching tile %v: %w", tile, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching tile %v: unexpected status code: %d", tile, resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decoding tile image %v: %w", tile, err)
	}
	return img, nil
}

// GetTileURL returns the URL for downloading the map tile
func (p *URLTileProvider) GetTileURL(tile Tile) string {
	r := strings.NewReplacer(
		"{z}", strconv.Itoa(tile.Zoom),
		"{x}", strconv.Itoa(tile.X),
		"{y}", strconv.Itoa(tile.Y),
	)
	return r.Replace(p.template)
}
