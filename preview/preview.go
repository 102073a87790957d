// Package preview shows the image chosen in a file input inside a preview container.
package preview

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/olablt/gio-photomap/page"
	"github.com/olablt/gio-photomap/tiles/worker"
	"github.com/rs/zerolog"
	_ "golang.org/x/image/webp"
)

// MaxFileSize is the largest file read for a preview.
const MaxFileSize = 32 << 20

type options struct {
	ctx      context.Context
	log      zerolog.Logger
	pool     *worker.Pool
	onUpdate func()
}

type Option func(*options)

func WithContext(ctx context.Context) Option {
	return func(o *options) { o.ctx = ctx }
}

func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithPool reads files on pool instead of a new goroutine.
func WithPool(pool *worker.Pool) Option {
	return func(o *options) { o.pool = pool }
}

// WithOnUpdate sets a function called after the preview content changed.
func WithOnUpdate(fn func()) Option {
	return func(o *options) { o.onUpdate = fn }
}

// Setup shows the first file picked in the file input inputID as an image in the container
// previewID. It reports false, and does nothing, if either element is missing.
func Setup(doc *page.Document, inputID, previewID string, opts ...Option) bool {
	o := options{ctx: context.Background(), log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.log.With().Str("component", "preview").Logger()

	input, err := doc.FileInput(inputID)
	if err != nil {
		log.Debug().Err(err).Msg("no image input, preview disabled")
		return false
	}
	container, err := doc.Container(previewID)
	if err != nil {
		log.Debug().Err(err).Msg("no preview container, preview disabled")
		return false
	}

	// latest is the sequence number of the newest selection; older reads are dropped.
	var (
		mu     sync.Mutex
		latest uint64
	)
	input.Changes.Subscribe(func(e page.FileSelectEvent) {
		if len(e.Files) == 0 {
			return
		}
		file := e.Files[0]
		mu.Lock()
		latest++
		seq := latest
		mu.Unlock()
		work := func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			node, err := Load(file)
			if err != nil {
				log.Error().Err(err).Str("file", file.Name).Msg("reading preview")
				return err
			}
			if node.Decoded == nil {
				log.Warn().Str("file", file.Name).Msg("file is not a decodable image")
			}
			mu.Lock()
			if seq != latest {
				mu.Unlock()
				log.Debug().Str("file", file.Name).Msg("newer selection, preview dropped")
				return nil
			}
			container.Replace(node)
			mu.Unlock()
			if o.onUpdate != nil {
				o.onUpdate()
			}
			return nil
		}
		if o.pool != nil && o.pool.Submit(worker.Task{Ctx: o.ctx, Name: "preview " + file.Name, Work: work}) {
			return
		}
		go work(o.ctx)
	})
	return true
}

// Load reads f and returns the preview image node for it.
func Load(f page.File) (*page.Image, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("%s is larger than %d bytes", f.Name, MaxFileSize)
	}

	node := &page.Image{
		Src:   DataURL(data),
		Alt:   "Preview",
		Class: "img-fluid",
	}
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		node.Decoded = img
	}
	return node, nil
}

// DataURL encodes data as a base64 data URL with its detected media type.
func DataURL(data []byte) string {
	return "data:" + mimetype.Detect(data).String() + ";base64," + base64.StdEncoding.EncodeToString(data)
}
