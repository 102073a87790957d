package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/olablt/gio-photomap/tiles"
	"github.com/rs/zerolog"
)

const (
	// DefaultNominatimURL is the public OpenStreetMap Nominatim instance.
	DefaultNominatimURL = "https://nominatim.openstreetmap.org"

	cacheTTL         = time.Hour
	nominatimLimit   = 10
	defaultUserAgent = "gio-photomap/1.0 (+https://github.com/olablt/gio-photomap)"
)

type nominatimResult struct {
	PlaceID     int64    `json:"place_id"`
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	BoundingBox []string `json:"boundingbox"` // min lat, max lat, min lon, max lon
}

type cachedSearch struct {
	places []Place
	at     time.Time
}

// Nominatim searches OpenStreetMap data. Results are cached per query for an hour.
type Nominatim struct {
	baseURL   string
	userAgent string
	client    *http.Client
	log       zerolog.Logger

	mu    sync.RWMutex
	cache map[string]cachedSearch
}

func NewNominatim(baseURL, userAgent string, timeout time.Duration, log zerolog.Logger) *Nominatim {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Nominatim{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		log:       log.With().Str("component", "places.nominatim").Logger(),
		cache:     make(map[string]cachedSearch),
	}
}

func (n *Nominatim) Search(ctx context.Context, q Query) ([]Place, error) {
	if q.Text == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("q", q.Text)
	params.Set("format", "jsonv2")
	params.Set("limit", strconv.Itoa(nominatimLimit))
	if !q.Bias.IsEmpty() {
		params.Set("viewbox", fmt.Sprintf("%f,%f,%f,%f",
			q.Bias.SouthWest.Lng, q.Bias.NorthEast.Lat, q.Bias.NorthEast.Lng, q.Bias.SouthWest.Lat))
	}
	apiURL := n.baseURL + "/search?" + params.Encode()

	n.mu.RLock()
	if c, ok := n.cache[apiURL]; ok && time.Since(c.at) < cacheTTL {
		n.mu.RUnlock()
		return c.places, nil
	}
	n.mu.RUnlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	n.log.Debug().Str("query", q.Text).Stringer("bias", q.Bias).Msg("search")
	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nominatim request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	var raw []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding nominatim response: %w", err)
	}

	results := make([]Place, 0, len(raw))
	for _, r := range raw {
		results = append(results, fromNominatim(r))
	}

	n.mu.Lock()
	n.cache[apiURL] = cachedSearch{places: results, at: time.Now()}
	n.mu.Unlock()
	return results, nil
}

func fromNominatim(r nominatimResult) Place {
	name := r.Name
	if name == "" {
		name, _, _ = strings.Cut(r.DisplayName, ",")
	}
	p := Place{
		ID:      "osm:" + strconv.FormatInt(r.PlaceID, 10),
		Name:    name,
		Address: r.DisplayName,
	}

	lat, errLat := strconv.ParseFloat(r.Lat, 64)
	lng, errLng := strconv.ParseFloat(r.Lon, 64)
	if errLat != nil || errLng != nil {
		return p
	}
	p.Geometry = &Geometry{Location: tiles.LatLng{Lat: lat, Lng: lng}}

	if len(r.BoundingBox) == 4 {
		var v [4]float64
		for i, s := range r.BoundingBox {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return p
			}
			v[i] = f
		}
		b := tiles.NewBounds(tiles.LatLng{Lat: v[0], Lng: v[2]}, tiles.LatLng{Lat: v[1], Lng: v[3]})
		p.Geometry.Viewport = &b
	}
	return p
}
