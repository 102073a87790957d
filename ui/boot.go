// Package ui wires a page document to the map controller, the preview and the gallery,
// and shows it in a Gio window.
package ui

import (
	"context"
	"fmt"

	"github.com/olablt/gio-photomap/gallery"
	"github.com/olablt/gio-photomap/mapview"
	"github.com/olablt/gio-photomap/page"
	"github.com/olablt/gio-photomap/places"
	"github.com/olablt/gio-photomap/preview"
	"github.com/olablt/gio-photomap/store"
	"github.com/olablt/gio-photomap/tiles/worker"
	"github.com/rs/zerolog"
)

// LocationSource provides the stored locations of a theme.
type LocationSource interface {
	MapLocations(themeID uint) ([]store.MapLocation, error)
}

// Deps are the services a page is wired to. Only Log is required.
type Deps struct {
	Ctx        context.Context
	Log        zerolog.Logger
	Pool       *worker.Pool
	Searcher   places.Searcher
	Locations  LocationSource
	ThemeID    uint
	MapOptions []mapview.Option
	Invalidate func()
}

// Page is a booted document.
type Page struct {
	Doc    *page.Document
	Map    *mapview.Controller // nil when the document has no map
	Search *mapview.SearchBox  // nil without a searcher or search input

	deps Deps
}

// Boot wires doc the way the map page does on load: the image preview always, the map and
// its search box only when the document has a map container.
func Boot(doc *page.Document, deps Deps) (*Page, error) {
	if deps.Ctx == nil {
		deps.Ctx = context.Background()
	}
	log := deps.Log.With().Str("component", "ui").Logger()
	p := &Page{Doc: doc, deps: deps}

	preview.Setup(doc, page.ImageInputID, page.PreviewID,
		preview.WithContext(deps.Ctx),
		preview.WithLogger(deps.Log),
		preview.WithPool(deps.Pool),
		preview.WithOnUpdate(deps.Invalidate),
	)

	if !doc.Has(page.MapID) {
		log.Debug().Msg("no map container, map disabled")
		return p, nil
	}

	opts := append([]mapview.Option{
		mapview.WithContext(deps.Ctx),
		mapview.WithLogger(deps.Log),
		mapview.WithPool(deps.Pool),
		mapview.WithInvalidate(deps.Invalidate),
	}, deps.MapOptions...)
	ctrl, err := mapview.Initialize(doc, page.MapID, opts...)
	if err != nil {
		return nil, err
	}
	p.Map = ctrl

	if deps.Searcher != nil && doc.Has(page.SearchInputID) {
		sb, err := ctrl.SetupPlacesSearch(doc, page.SearchInputID, deps.Searcher)
		if err != nil {
			return nil, err
		}
		p.Search = sb
	}

	if deps.Locations != nil && deps.ThemeID != 0 {
		if err := p.ShowTheme(deps.ThemeID); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ShowTheme replaces the markers with the locations of a theme. Clicking a marker shows
// the photos of its location in the gallery.
func (p *Page) ShowTheme(themeID uint) error {
	if p.Map == nil || p.deps.Locations == nil {
		return nil
	}
	locs, err := p.deps.Locations.MapLocations(themeID)
	if err != nil {
		return fmt.Errorf("loading theme %d: %w", themeID, err)
	}

	p.Map.ClearMarkers()
	for _, loc := range locs {
		photos := loc.Photos
		p.Map.AddMarker(loc.Position, loc.Name, func(*mapview.Marker) {
			if err := gallery.Render(p.Doc, photos, page.GalleryID); err != nil {
				p.deps.Log.Error().Err(err).Msg("rendering gallery")
			}
		})
	}
	if len(locs) > 0 {
		if err := p.Map.FitToBounds(); err != nil {
			return err
		}
	}
	p.deps.Log.Info().Uint("theme", themeID).Int("locations", len(locs)).Msg("theme shown")
	return nil
}
