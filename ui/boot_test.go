package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/olablt/gio-photomap/gallery"
	"github.com/olablt/gio-photomap/page"
	"github.com/olablt/gio-photomap/places"
	"github.com/olablt/gio-photomap/store"
	"github.com/olablt/gio-photomap/tiles"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct{}

func (stubSearcher) Search(context.Context, places.Query) ([]places.Place, error) { return nil, nil }

type stubLocations struct {
	locs []store.MapLocation
	err  error
}

func (s stubLocations) MapLocations(uint) ([]store.MapLocation, error) { return s.locs, s.err }

var themeLocations = []store.MapLocation{
	{
		ID: 1, Name: "Fuji", Position: tiles.LatLng{Lat: 35.3606, Lng: 138.7274},
		Photos: []gallery.Photo{
			{URL: "/media/photos/a.jpg", Caption: "summit", Date: "2024-05-02 06:30"},
			{URL: "/media/photos/b.jpg", Caption: "sunrise", Date: "2024-05-01 10:00"},
		},
	},
	{
		ID: 2, Name: "Kyoto", Position: tiles.LatLng{Lat: 35.0116, Lng: 135.7681},
		Photos: []gallery.Photo{{URL: "/media/photos/c.jpg", Caption: "temple", Date: "N/A"}},
	},
}

func TestBootMapPage(t *testing.T) {
	doc := NewMapPage()
	p, err := Boot(doc, Deps{
		Log:       zerolog.Nop(),
		Searcher:  stubSearcher{},
		Locations: stubLocations{locs: themeLocations},
		ThemeID:   7,
	})
	require.NoError(t, err)
	require.NotNil(t, p.Map)
	require.NotNil(t, p.Search)

	markers := p.Map.Markers()
	require.Len(t, markers, 2)
	for _, loc := range themeLocations {
		assert.True(t, p.Map.Bounds().Contains(loc.Position))
	}

	gal, err := doc.Container(page.GalleryID)
	require.NoError(t, err)
	markers[0].Click()
	assert.Len(t, gal.Children(), 2)
	markers[1].Click()
	assert.Len(t, gal.Children(), 1)
	assert.Equal(t, "/media/photos/c.jpg", page.Images(gal.Children())[0].Src)
}

func TestBootWithoutMap(t *testing.T) {
	input := page.NewFileInput(page.ImageInputID)
	preview := page.NewContainer(page.PreviewID)
	doc := page.NewDocument(input, preview)

	updated := make(chan struct{}, 1)
	p, err := Boot(doc, Deps{Log: zerolog.Nop(), Searcher: stubSearcher{}, Invalidate: func() {
		select {
		case updated <- struct{}{}:
		default:
		}
	}})
	require.NoError(t, err)
	assert.Nil(t, p.Map)
	assert.Nil(t, p.Search)

	// the preview is wired even without a map
	input.Select(page.FileFromBytes("x.txt", []byte("not an image")))
	select {
	case <-updated:
	case <-time.After(2 * time.Second):
		t.Fatal("preview not updated")
	}
	assert.Equal(t, 1, preview.Len())
}

func TestBootEmptyDocument(t *testing.T) {
	p, err := Boot(page.NewDocument(), Deps{Log: zerolog.Nop()})
	require.NoError(t, err)
	assert.Nil(t, p.Map)
}

func TestBootThemeError(t *testing.T) {
	_, err := Boot(NewMapPage(), Deps{
		Log:       zerolog.Nop(),
		Locations: stubLocations{err: errors.New("db down")},
		ThemeID:   1,
	})
	assert.ErrorContains(t, err, "db down")
}

func TestShowEmptyTheme(t *testing.T) {
	p, err := Boot(NewMapPage(), Deps{Log: zerolog.Nop(), Locations: stubLocations{}, ThemeID: 1})
	require.NoError(t, err)
	assert.Empty(t, p.Map.Markers())
	assert.Nil(t, p.Search)
}
