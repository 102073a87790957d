package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olablt/gio-photomap/tiles"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

const textSearchResponse = `{
  "status": "OK",
  "results": [
    {
      "place_id": "abc",
      "name": "Tokyo Tower",
      "formatted_address": "4 Chome-2-8 Shibakoen, Minato City, Tokyo",
      "geometry": {
        "location": {"lat": 35.6586, "lng": 139.7454},
        "viewport": {
          "northeast": {"lat": 35.66, "lng": 139.747},
          "southwest": {"lat": 35.657, "lng": 139.744}
        }
      }
    },
    {
      "place_id": "def",
      "name": "Somewhere vague"
    }
  ]
}`

func TestGoogleSearch(t *testing.T) {
	var gotQuery, gotLocation, gotRadius string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/place/textsearch/json", r.URL.Path)
		gotQuery = r.URL.Query().Get("query")
		gotLocation = r.URL.Query().Get("location")
		gotRadius = r.URL.Query().Get("radius")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(textSearchResponse))
	}))
	defer srv.Close()

	g, err := NewGoogle("AIzaTestKey", zerolog.Nop(), maps.WithBaseURL(srv.URL))
	require.NoError(t, err)

	bias := tiles.NewBounds(tiles.LatLng{Lat: 35.5, Lng: 139.5}, tiles.LatLng{Lat: 35.8, Lng: 139.9})
	results, err := g.Search(context.Background(), Query{Text: "tokyo tower", Bias: bias})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "tokyo tower", gotQuery)
	assert.NotEmpty(t, gotLocation)
	assert.NotEmpty(t, gotRadius)

	first := results[0]
	assert.Equal(t, "gpl:abc", first.ID)
	assert.Equal(t, "Tokyo Tower", first.Name)
	require.NotNil(t, first.Geometry)
	assert.InDelta(t, 35.6586, first.Geometry.Location.Lat, 1e-9)
	require.NotNil(t, first.Geometry.Viewport)
	assert.InDelta(t, 35.657, first.Geometry.Viewport.SouthWest.Lat, 1e-9)
	assert.InDelta(t, 139.747, first.Geometry.Viewport.NorthEast.Lng, 1e-9)

	assert.Nil(t, results[1].Geometry)
}

func TestGoogleRequiresKey(t *testing.T) {
	_, err := NewGoogle("", zerolog.Nop())
	assert.Error(t, err)
}

func TestGoogleEmptyQuery(t *testing.T) {
	g, err := NewGoogle("AIzaTestKey", zerolog.Nop(), maps.WithBaseURL("http://127.0.0.1:1"))
	require.NoError(t, err)
	results, err := g.Search(context.Background(), Query{})
	assert.NoError(t, err)
	assert.Empty(t, results)
}
