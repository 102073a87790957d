package tiles

import (
	"image"
	"sync"

	"gioui.org/op/paint"
)

type cachedOp struct {
	src image.Image
	op  paint.ImageOp
}

// ImageOpCache keeps the paint.ImageOp built for each image so a frame does not
// upload the same texture again.
type ImageOpCache struct {
	cache map[string]cachedOp
	mu    sync.RWMutex
}

func NewImageOpCache() *ImageOpCache {
	return &ImageOpCache{
		cache: make(map[string]cachedOp),
	}
}

// Op returns the cached op for key, rebuilding it when img is not the image it was built from.
// Images must be pointer types.
func (c *ImageOpCache) Op(key string, img image.Image) paint.ImageOp {
	c.mu.RLock()
	cached, ok := c.cache[key]
	c.mu.RUnlock()
	if ok && cached.src == img {
		return cached.op
	}
	op := paint.NewImageOp(img)
	c.mu.Lock()
	c.cache[key] = cachedOp{src: img, op: op}
	c.mu.Unlock()
	return op
}

func (c *ImageOpCache) Clear() {
	c.mu.Lock()
	c.cache = make(map[string]cachedOp)
	c.mu.Unlock()
}
