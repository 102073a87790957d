// Package places resolves free-text queries to geographic results through a hosted
// places service.
package places

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/olablt/gio-photomap/tiles"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/olablt/gio-photomap/places"

// Place is one search result.
type Place struct {
	ID       string
	Name     string
	Address  string
	Geometry *Geometry // nil when the service returned no position
}

// Geometry locates a place. Viewport is the area recommended for showing it, when known.
type Geometry struct {
	Location tiles.LatLng
	Viewport *tiles.Bounds
}

// Query is a free-text search, optionally biased towards an area.
type Query struct {
	Text string
	Bias tiles.Bounds
}

// Searcher runs place searches.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]Place, error)
}

// Config selects and configures a Searcher.
type Config struct {
	Provider     string // "google" or "nominatim"
	GoogleAPIKey string
	NominatimURL string
	UserAgent    string
	Timeout      time.Duration
}

// New returns the searcher named by cfg.Provider, counting searches on the global meter.
func New(cfg Config, log zerolog.Logger) (Searcher, error) {
	var (
		s   Searcher
		err error
	)
	switch strings.ToLower(cfg.Provider) {
	case "google":
		s, err = NewGoogle(cfg.GoogleAPIKey, log)
	case "nominatim", "":
		s = NewNominatim(cfg.NominatimURL, cfg.UserAgent, cfg.Timeout, log)
	default:
		return nil, fmt.Errorf("unknown places provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return newMetered(strings.ToLower(cfg.Provider), s, log), nil
}

type metered struct {
	name     string
	searcher Searcher
	searches metric.Int64Counter
}

func newMetered(name string, s Searcher, log zerolog.Logger) *metered {
	if name == "" {
		name = "nominatim"
	}
	searches, err := otel.Meter(instrumentationName).Int64Counter(
		"places.search",
		metric.WithDescription("Place searches by provider and result"),
	)
	if err != nil {
		log.Warn().Err(err).Msg("creating places.search counter")
	}
	return &metered{name: name, searcher: s, searches: searches}
}

func (m *metered) Search(ctx context.Context, q Query) ([]Place, error) {
	results, err := m.searcher.Search(ctx, q)
	if m.searches != nil {
		result := "ok"
		if err != nil {
			result = "error"
		}
		m.searches.Add(ctx, 1, metric.WithAttributes(
			attribute.String("provider", m.name),
			attribute.String("result", result),
		))
	}
	return results, err
}

// BiasRadius returns the radius in meters of the circle around b's center that reaches its corners.
func BiasRadius(b tiles.Bounds) float64 {
	if b.IsEmpty() {
		return 0
	}
	return haversine(b.Center(), b.NorthEast)
}
