package tiles

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"sync"
	"time"

	"github.com/olablt/gio-photomap/tiles/worker"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type TileProvider interface {
	GetTile(tile Tile) (image.Image, error)
}

// ContextTileProvider is a TileProvider whose fetch can be cancelled.
type ContextTileProvider interface {
	TileProvider
	GetTileContext(ctx context.Context, tile Tile) (image.Image, error)
}

// fetchTile asks p for tile, passing ctx when p accepts one.
func fetchTile(ctx context.Context, p TileProvider, tile Tile) (image.Image, error) {
	if cp, ok := p.(ContextTileProvider); ok {
		return cp.GetTileContext(ctx, tile)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.GetTile(tile)
}

// RetryAfter is how long a fallback tile is shown before the provider is asked again.
const RetryAfter = 30 * time.Second

type fallbackTile struct {
	img image.Image
	at  time.Time
}

// TileManager serves tiles of one tile set from its cache, loading misses from the provider.
type TileManager struct {
	name     string
	cache    Cache
	provider TileProvider
	pool     *worker.Pool
	log      zerolog.Logger

	loading   map[string]bool
	fallbacks map[string]fallbackTile
	loadingMu sync.Mutex

	onLoadMu sync.RWMutex
	onLoad   func()

	fetches metric.Int64Counter
}

// NewTileManager returns a manager named after its tile set (the name keys metrics and logs).
// A nil cache means an in-memory ImageCache; a nil pool makes Request load in plain goroutines.
func NewTileManager(name string, provider TileProvider, cache Cache, pool *worker.Pool, log zerolog.Logger) *TileManager {
	if cache == nil {
		cache = NewImageCache()
	}
	tm := &TileManager{
		name:      name,
		cache:     cache,
		provider:  provider,
		pool:      pool,
		log:       log.With().Str("component", "tiles").Str("tileset", name).Logger(),
		loading:   make(map[string]bool),
		fallbacks: make(map[string]fallbackTile),
	}
	fetches, err := meter().Int64Counter(
		"tiles.fetch",
		metric.WithDescription("Tiles loaded from a provider"),
	)
	if err != nil {
		tm.log.Warn().Err(err).Msg("creating tiles.fetch counter")
	}
	tm.fetches = fetches
	return tm
}

// Name returns the tile set name.
func (tm *TileManager) Name() string {
	return tm.name
}

func (tm *TileManager) GetCache() Cache {
	return tm.cache
}

// SetOnLoadCallback registers fn to run after every tile loaded from the provider.
func (tm *TileManager) SetOnLoadCallback(callback func()) {
	tm.onLoadMu.Lock()
	tm.onLoad = callback
	tm.onLoadMu.Unlock()
}

// GetTileKey returns a unique string key for a tile
func GetTileKey(tile Tile) string {
	return fmt.Sprintf("%d/%d/%d", tile.Zoom, tile.X, tile.Y)
}

// GetTile returns the tile, blocking on the provider on a cache miss.
// Fallback tiles are returned without error but kept out of the cache.
func (tm *TileManager) GetTile(tile Tile) (image.Image, error) {
	return tm.GetTileContext(context.Background(), tile)
}

// GetTileContext is GetTile with the provider fetch bound to ctx.
func (tm *TileManager) GetTileContext(ctx context.Context, tile Tile) (image.Image, error) {
	key := GetTileKey(tile)

	if img, exists := tm.cache.Get(key); exists {
		return img, nil
	}

	img, err := fetchTile(ctx, tm.provider, tile)
	switch {
	case errors.Is(err, ErrFallback) && img != nil:
		tm.count("fallback")
		tm.log.Debug().Err(err).Str("tile", key).Msg("using fallback tile")
		tm.loadingMu.Lock()
		tm.fallbacks[key] = fallbackTile{img: img, at: time.Now()}
		tm.loadingMu.Unlock()
	case err != nil:
		tm.count("error")
		return nil, err
	default:
		tm.count("ok")
		tm.cache.Set(key, img)
		tm.loadingMu.Lock()
		delete(tm.fallbacks, key)
		tm.loadingMu.Unlock()
	}

	tm.onLoadMu.RLock()
	onLoad := tm.onLoad
	tm.onLoadMu.RUnlock()
	if onLoad != nil {
		onLoad()
	}
	return img, nil
}

// Peek returns the tile only if it is already loaded, falling back to the placeholder if one was served.
func (tm *TileManager) Peek(tile Tile) (image.Image, bool) {
	key := GetTileKey(tile)
	if img, ok := tm.cache.Get(key); ok {
		return img, true
	}
	tm.loadingMu.Lock()
	defer tm.loadingMu.Unlock()
	if fb, ok := tm.fallbacks[key]; ok {
		return fb.img, true
	}
	return nil, false
}

// Request loads the missing tiles in the background. Tiles already being loaded,
// or shown as a fallback for less than RetryAfter, are skipped.
func (tm *TileManager) Request(ctx context.Context, tiles []Tile) {
	for _, tile := range tiles {
		tile := tile
		key := GetTileKey(tile)
		if _, ok := tm.cache.Get(key); ok {
			continue
		}
		tm.loadingMu.Lock()
		fb, hasFallback := tm.fallbacks[key]
		if tm.loading[key] || (hasFallback && time.Since(fb.at) < RetryAfter) {
			tm.loadingMu.Unlock()
			continue
		}
		tm.loading[key] = true
		tm.loadingMu.Unlock()

		work := func(ctx context.Context) error {
			defer func() {
				tm.loadingMu.Lock()
				delete(tm.loading, key)
				tm.loadingMu.Unlock()
			}()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			_, err := tm.GetTileContext(ctx, tile)
			return err
		}
		if tm.pool == nil {
			go func() {
				if err := work(ctx); err != nil {
					tm.log.Debug().Err(err).Str("tile", key).Msg("tile load failed")
				}
			}()
			continue
		}
		tm.pool.Submit(worker.Task{Ctx: ctx, Name: "tile " + tm.name + " " + key, Work: work})
	}
}

func (tm *TileManager) count(result string) {
	if tm.fetches == nil {
		return
	}
	tm.fetches.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("provider", tm.name),
		attribute.String("result", result),
	))
}
