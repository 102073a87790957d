package mapview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/olablt/gio-photomap/page"
	"github.com/olablt/gio-photomap/places"
	"github.com/olablt/gio-photomap/tiles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	mu      sync.Mutex
	queries []places.Query
	results []places.Place
	err     error
}

func (f *fakeSearcher) Search(_ context.Context, q places.Query) ([]places.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	return f.results, f.err
}

func (f *fakeSearcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func kyoto() places.Place {
	vp := tiles.NewBounds(tiles.LatLng{Lat: 34.9, Lng: 135.6}, tiles.LatLng{Lat: 35.1, Lng: 135.9})
	return places.Place{
		Name:     "Kyoto",
		Geometry: &places.Geometry{Location: tiles.LatLng{Lat: 35.0116, Lng: 135.7681}, Viewport: &vp},
	}
}

func TestApplyPlacesSkipsMissingGeometry(t *testing.T) {
	c := newTestController(t)
	added := c.ApplyPlaces([]places.Place{{Name: "nowhere"}, kyoto()})
	assert.Equal(t, 1, added)
	require.Len(t, c.Markers(), 1)
	assert.Equal(t, "Kyoto", c.Markers()[0].Title())
	assert.True(t, c.Bounds().Contains(tiles.LatLng{Lat: 35.0116, Lng: 135.7681}))
}

func TestApplyPlacesUnionOfViewportsAndLocations(t *testing.T) {
	c := newTestController(t)
	nara := places.Place{Name: "Nara", Geometry: &places.Geometry{Location: tiles.LatLng{Lat: 34.6851, Lng: 135.8048}}}
	added := c.ApplyPlaces([]places.Place{kyoto(), nara})
	assert.Equal(t, 2, added)

	b := c.Bounds()
	assert.True(t, b.Contains(nara.Geometry.Location))
	assert.True(t, b.Contains(tiles.LatLng{Lat: 35.1, Lng: 135.6}))
	assert.True(t, b.Contains(tiles.LatLng{Lat: 34.9, Lng: 135.9}))
}

func TestApplyPlacesEmpty(t *testing.T) {
	c := newTestController(t)
	center, zoom := c.Center(), c.Zoom()
	assert.Zero(t, c.ApplyPlaces(nil))
	assert.Zero(t, c.ApplyPlaces([]places.Place{{Name: "a"}, {Name: "b"}}))
	assert.Empty(t, c.Markers())
	assert.Equal(t, center, c.Center())
	assert.Equal(t, zoom, c.Zoom())
}

func TestSetupPlacesSearch(t *testing.T) {
	doc := newTestDoc()
	c, err := Initialize(doc, page.MapID)
	require.NoError(t, err)

	s := &fakeSearcher{results: []places.Place{{Name: "broken"}, kyoto()}}
	sb, err := c.SetupPlacesSearch(doc, page.SearchInputID, s)
	require.NoError(t, err)

	controls := c.Controls(TopLeft)
	require.Len(t, controls, 3)
	assert.Equal(t, page.SearchInputID, controls[2].ID())

	// viewport changes move the search bias along
	c.PanBy(200, 0)
	assert.Equal(t, c.Bounds(), sb.Bias())

	input, err := doc.TextInput(page.SearchInputID)
	require.NoError(t, err)
	input.SetValue("  kyoto ")
	input.Submit()

	require.Eventually(t, func() bool {
		c.Drain()
		return len(c.Markers()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.Equal(t, 1, s.calls())
	assert.Equal(t, "kyoto", s.queries[0].Text)
	assert.False(t, s.queries[0].Bias.IsEmpty())
	assert.True(t, c.Bounds().Contains(kyoto().Geometry.Location))
}

func TestSearchErrorAddsNothing(t *testing.T) {
	doc := newTestDoc()
	c, err := Initialize(doc, page.MapID)
	require.NoError(t, err)
	s := &fakeSearcher{err: errors.New("quota exceeded")}
	sb, err := c.SetupPlacesSearch(doc, page.SearchInputID, s)
	require.NoError(t, err)

	sb.Search("tokyo")
	require.Eventually(t, func() bool { return s.calls() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	c.Drain()
	assert.Empty(t, c.Markers())

	sb.Search("   ")
	sb.Close()
	input, _ := doc.TextInput(page.SearchInputID)
	input.SetValue("tokyo")
	input.Submit()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, s.calls())
}

func TestSetupPlacesSearchMissingInput(t *testing.T) {
	c := newTestController(t)
	_, err := c.SetupPlacesSearch(page.NewDocument(), page.SearchInputID, &fakeSearcher{})
	assert.ErrorIs(t, err, page.ErrNoElement)
}
