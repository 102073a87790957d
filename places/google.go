package places

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/olablt/gio-photomap/tiles"
	"github.com/rs/zerolog"
	"googlemaps.github.io/maps"
)

// maxGoogleRadius is the largest bias radius the Places API accepts, in meters.
const maxGoogleRadius = 50000

// Google searches with the Google Places Text Search API.
type Google struct {
	client *maps.Client
	log    zerolog.Logger
}

// NewGoogle returns a searcher using apiKey. Extra client options are passed to the maps client.
func NewGoogle(apiKey string, log zerolog.Logger, opts ...maps.ClientOption) (*Google, error) {
	if apiKey == "" {
		return nil, errors.New("google places: API key not set")
	}
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &Google{
		client: client,
		log:    log.With().Str("component", "places.google").Logger(),
	}, nil
}

func (g *Google) Search(ctx context.Context, q Query) ([]Place, error) {
	if q.Text == "" {
		return nil, nil
	}
	req := &maps.TextSearchRequest{Query: q.Text}
	if !q.Bias.IsEmpty() {
		c := q.Bias.Center()
		req.Location = &maps.LatLng{Lat: c.Lat, Lng: c.Lng}
		req.Radius = uint(math.Max(1, math.Min(BiasRadius(q.Bias), maxGoogleRadius)))
	}

	g.log.Debug().Str("query", q.Text).Stringer("bias", q.Bias).Msg("text search")
	resp, err := g.client.TextSearch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("google places text search: %w", err)
	}

	results := make([]Place, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, fromGoogle(r))
	}
	return results, nil
}

func fromGoogle(r maps.PlacesSearchResult) Place {
	p := Place{
		ID:      "gpl:" + r.PlaceID,
		Name:    r.Name,
		Address: r.FormattedAddress,
	}
	loc := tiles.LatLng{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng}
	if loc.IsZero() {
		return p
	}
	p.Geometry = &Geometry{Location: loc}

	vp := r.Geometry.Viewport
	if vp.NorthEast != (maps.LatLng{}) || vp.SouthWest != (maps.LatLng{}) {
		b := tiles.NewBounds(
			tiles.LatLng{Lat: vp.SouthWest.Lat, Lng: vp.SouthWest.Lng},
			tiles.LatLng{Lat: vp.NorthEast.Lat, Lng: vp.NorthEast.Lng},
		)
		p.Geometry.Viewport = &b
	}
	return p
}
