package tiles

import (
	"context"
	"errors"
	"fmt"
	"image"
)

// ErrFallback marks a tile served by the fallback provider. The image is usable
// but should not be cached as the real tile.
var ErrFallback = errors.New("served fallback tile")

// CombinedTileProvider serves tiles from primary and falls back to a local provider
// when primary fails.
type CombinedTileProvider struct {
	primary  TileProvider
	fallback TileProvider
}

func NewCombinedTileProvider(primary, fallback TileProvider) *CombinedTileProvider {
	return &CombinedTileProvider{
		primary:  primary,
		fallback: fallback,
	}
}

// GetTile returns the primary tile, or the fallback tile together with an error wrapping ErrFallback.
func (p *CombinedTileProvider) GetTile(tile Tile) (image.Image, error) {
	return p.GetTileContext(context.Background(), tile)
}

// GetTileContext is GetTile bound to ctx. A cancelled fetch does not fall back.
func (p *CombinedTileProvider) GetTileContext(ctx context.Context, tile Tile) (image.Image, error) {
	img, err := fetchTile(ctx, p.primary, tile)
	if err == nil {
		return img, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	fallbackImg, ferr := fetchTile(ctx, p.fallback, tile)
	if ferr != nil {
		return nil, fmt.Errorf("both primary and fallback providers failed: %w", errors.Join(err, ferr))
	}
	return fallbackImg, fmt.Errorf("%w: %w", ErrFallback, err)
}
