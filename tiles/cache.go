package tiles

import "image"

// Cache stores decoded tile images by key.
type Cache interface {
	Get(key string) (image.Image, bool)
	Set(key string, img image.Image)
	Clear()
}
