package gallery

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{G: 255, A: 255})
	require.NoError(t, png.Encode(f, img))
}

func TestLoaderPath(t *testing.T) {
	l := NewLoader("/srv/media", nil, nil, zerolog.Nop())
	assert.Equal(t, filepath.Join("/srv/media", "photos", "a.jpg"), l.Path("/media/photos/a.jpg"))
	assert.Equal(t, "", l.Path("https://example.com/a.jpg"))
	assert.Equal(t, "/tmp/x.png", l.Path("/tmp/x.png"))
	assert.Equal(t, "", l.Path("data:image/png;base64,iVBOR"))
	assert.Equal(t, "", l.Path("/media/../etc/passwd"))
	assert.Equal(t, "", l.Path("/media/photos/../../x.png"))
	assert.Equal(t, filepath.Join("/srv/media", "b.png"), l.Path("/media/photos/../b.png"))
}

func TestLoaderRejectsEscapingMediaURL(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "outside.png"))
	media := filepath.Join(root, "media")
	require.NoError(t, os.MkdirAll(media, 0o755))

	l := NewLoader(media, nil, nil, zerolog.Nop())
	_, err := l.Load(context.Background(), "/media/../outside.png")
	assert.ErrorIs(t, err, ErrUnsupportedSource)
	_, err = l.Load(context.Background(), "data:image/png;base64,iVBOR")
	assert.ErrorIs(t, err, ErrUnsupportedSource)
}

func TestLoaderIgnoresInlineSources(t *testing.T) {
	l := NewLoader(t.TempDir(), nil, nil, zerolog.Nop())
	src := "data:image/png;base64,iVBOR"
	l.Request(context.Background(), src)
	l.mu.Lock()
	loading, failed := l.loading[src], l.failed[src]
	l.mu.Unlock()
	assert.False(t, loading)
	assert.False(t, failed)
}

func TestLoaderMediaFile(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "photos", "a.png"))

	l := NewLoader(dir, nil, nil, zerolog.Nop())
	loaded := make(chan struct{}, 1)
	l.SetOnLoadCallback(func() { loaded <- struct{}{} })

	l.Request(context.Background(), "/media/photos/a.png")
	select {
	case <-loaded:
	case <-time.After(2 * time.Second):
		t.Fatal("image not loaded")
	}
	img, ok := l.Peek("/media/photos/a.png")
	require.True(t, ok)
	assert.Equal(t, 2, img.Bounds().Dx())
}

func TestLoaderHTTP(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"))
	srv := httptest.NewServer(http.FileServer(http.Dir(dir)))
	defer srv.Close()

	l := NewLoader(dir, nil, nil, zerolog.Nop())
	img, err := l.Load(context.Background(), srv.URL+"/b.png")
	require.NoError(t, err)
	assert.Equal(t, 2, img.Bounds().Dy())

	_, err = l.Load(context.Background(), srv.URL+"/missing.png")
	assert.ErrorContains(t, err, "404")
}

func TestLoaderRemembersFailures(t *testing.T) {
	l := NewLoader(t.TempDir(), nil, nil, zerolog.Nop())
	l.Request(context.Background(), "/media/none.jpg")
	require.Eventually(t, func() bool {
		l.mu.Lock()
		defer l.mu.Unlock()
		return l.failed["/media/none.jpg"]
	}, 2*time.Second, 10*time.Millisecond)
	_, ok := l.Peek("/media/none.jpg")
	assert.False(t, ok)
}
