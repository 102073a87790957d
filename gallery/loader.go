package gallery

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/olablt/gio-photomap/tiles"
	"github.com/olablt/gio-photomap/tiles/worker"
	"github.com/rs/zerolog"
	_ "golang.org/x/image/webp"
)

// MediaPrefix is the URL prefix of files kept in the media directory.
const MediaPrefix = "/media/"

// ErrUnsupportedSource is returned for sources the loader does not read: inline data
// URLs and media URLs leading out of the media directory.
var ErrUnsupportedSource = errors.New("unsupported image source")

// Loader fetches and decodes gallery images in the background.
type Loader struct {
	mediaDir string
	client   *http.Client
	cache    tiles.Cache
	pool     *worker.Pool
	log      zerolog.Logger

	mu      sync.Mutex
	loading map[string]bool
	failed  map[string]bool
	onLoad  func()
}

// NewLoader returns a loader resolving MediaPrefix URLs inside mediaDir.
// A nil cache means an in-memory one; a nil pool loads in plain goroutines.
func NewLoader(mediaDir string, cache tiles.Cache, pool *worker.Pool, log zerolog.Logger) *Loader {
	if cache == nil {
		cache = tiles.NewImageCache()
	}
	return &Loader{
		mediaDir: mediaDir,
		client:   &http.Client{},
		cache:    cache,
		pool:     pool,
		log:      log.With().Str("component", "gallery").Logger(),
		loading:  make(map[string]bool),
		failed:   make(map[string]bool),
	}
}

// SetOnLoadCallback registers fn to run after each image is loaded.
func (l *Loader) SetOnLoadCallback(fn func()) {
	l.mu.Lock()
	l.onLoad = fn
	l.mu.Unlock()
}

// Peek returns the image for src if it is loaded.
func (l *Loader) Peek(src string) (image.Image, bool) {
	return l.cache.Get(src)
}

// Request starts loading src unless it is loaded, loading or failed before.
// Inline data URLs are ignored.
func (l *Loader) Request(ctx context.Context, src string) {
	if src == "" || isInline(src) {
		return
	}
	if _, ok := l.cache.Get(src); ok {
		return
	}
	l.mu.Lock()
	if l.loading[src] || l.failed[src] {
		l.mu.Unlock()
		return
	}
	l.loading[src] = true
	l.mu.Unlock()

	work := func(ctx context.Context) error {
		img, err := l.Load(ctx, src)
		l.mu.Lock()
		delete(l.loading, src)
		if err != nil {
			l.failed[src] = true
		}
		onLoad := l.onLoad
		l.mu.Unlock()
		if err != nil {
			l.log.Warn().Err(err).Str("src", src).Msg("loading photo")
			return err
		}
		l.cache.Set(src, img)
		if onLoad != nil {
			onLoad()
		}
		return nil
	}
	if l.pool != nil && l.pool.Submit(worker.Task{Ctx: ctx, Name: "photo " + src, Work: work}) {
		return
	}
	go work(ctx)
}

// Load fetches and decodes src synchronously.
func (l *Loader) Load(ctx context.Context, src string) (image.Image, error) {
	rc, err := l.open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	img, _, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", src, err)
	}
	return img, nil
}

// Path returns the file src points to, or "" for remote and inline sources and for
// media URLs that resolve outside the media directory.
func (l *Loader) Path(src string) string {
	switch {
	case isRemote(src), isInline(src):
		return ""
	case strings.HasPrefix(src, MediaPrefix):
		root := filepath.Clean(l.mediaDir)
		full := filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(src, MediaPrefix)))
		rel, err := filepath.Rel(root, full)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return ""
		}
		return full
	}
	return src
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

func isInline(src string) bool {
	return strings.HasPrefix(src, "data:")
}

func (l *Loader) open(ctx context.Context, src string) (io.ReadCloser, error) {
	if !isRemote(src) {
		path := l.Path(src)
		if path == "" {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, src)
		}
		return os.Open(path)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetching %s: status %d", src, resp.StatusCode)
	}
	return resp.Body, nil
}
