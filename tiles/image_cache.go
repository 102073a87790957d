package tiles

import (
	"image"
	"sync"
)

// ImageCache is an unbounded in-memory Cache.
type ImageCache struct {
	cache map[string]image.Image
	mu    sync.RWMutex
}

func NewImageCache() *ImageCache {
	return &ImageCache{
		cache: make(map[string]image.Image),
	}
}

func (c *ImageCache) Get(key string) (image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	img, ok := c.cache[key]
	return img, ok
}

func (c *ImageCache) Set(key string, img image.Image) {
	c.mu.Lock()
	c.cache[key] = img
	c.mu.Unlock()
}

func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.cache = make(map[string]image.Image)
	c.mu.Unlock()
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}
