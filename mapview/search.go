package mapview

import (
	"context"
	"fmt"
	"strings"

	"github.com/olablt/gio-photomap/page"
	"github.com/olablt/gio-photomap/places"
	"github.com/olablt/gio-photomap/tiles"
)

// SearchBox connects a text input to a places searcher for one map.
type SearchBox struct {
	ctrl     *Controller
	input    *page.TextInput
	searcher places.Searcher
	bias     tiles.Bounds
	unsubs   []func()
}

// SetupPlacesSearch turns the text input inputID of doc into a search box for the map.
// Searches are biased towards the current viewport; results are added as markers.
func (c *Controller) SetupPlacesSearch(doc *page.Document, inputID string, searcher places.Searcher) (*SearchBox, error) {
	input, err := doc.TextInput(inputID)
	if err != nil {
		return nil, fmt.Errorf("places search input: %w", err)
	}
	sb := &SearchBox{
		ctrl:     c,
		input:    input,
		searcher: searcher,
		bias:     c.Bounds(),
	}
	c.AddControl(TopLeft, input)

	sb.unsubs = append(sb.unsubs,
		c.Subscribe(func(e Event) {
			if e.Kind == BoundsChanged {
				sb.bias = e.Bounds
			}
		}),
		input.Submits.Subscribe(func(e page.SubmitEvent) {
			sb.Search(e.Value)
		}),
	)
	return sb, nil
}

// Bias returns the area searches currently prefer.
func (sb *SearchBox) Bias() tiles.Bounds { return sb.bias }

// Search runs text in the background and applies the results on the UI goroutine.
func (sb *SearchBox) Search(text string) {
	q := places.Query{Text: strings.TrimSpace(text), Bias: sb.bias}
	if q.Text == "" {
		return
	}
	c := sb.ctrl
	c.run("places "+q.Text, func(ctx context.Context) error {
		results, err := sb.searcher.Search(ctx, q)
		if err != nil {
			c.post(func() {
				c.log.Error().Err(err).Str("query", q.Text).Msg("places search failed")
			})
			return err
		}
		c.post(func() { c.ApplyPlaces(results) })
		return nil
	})
}

// Close stops reacting to the input and to viewport changes.
func (sb *SearchBox) Close() {
	for _, unsub := range sb.unsubs {
		unsub()
	}
	sb.unsubs = nil
}

// ApplyPlaces adds a marker for every place with a position and fits the viewport to them.
// It returns the number of markers added.
func (c *Controller) ApplyPlaces(results []places.Place) int {
	if len(results) == 0 {
		return 0
	}
	var b tiles.Bounds
	added := 0
	for _, p := range results {
		if p.Geometry == nil {
			c.log.Warn().Str("place", p.Name).Msg("returned place contains no geometry")
			continue
		}
		c.AddMarker(p.Geometry.Location, p.Name, nil)
		added++
		if p.Geometry.Viewport != nil {
			b = b.Union(*p.Geometry.Viewport)
		} else {
			b = b.Extend(p.Geometry.Location)
		}
	}
	if !b.IsEmpty() {
		_ = c.FitBounds(b)
	}
	return added
}
