package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/olablt/gio-photomap/store"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(store.Config{
		Driver:   "sqlite",
		Path:     filepath.Join(dir, "photomap.db"),
		MediaDir: filepath.Join(dir, "media"),
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func runArgs(t *testing.T, st *store.Store, themeID uint, args ...string) (string, bool, error) {
	t.Helper()
	fs := pflag.NewFlagSet("photomap", pflag.ContinueOnError)
	cmds := registerCommands(fs)
	require.NoError(t, fs.Parse(args))
	var out bytes.Buffer
	done, err := cmds.run(st, themeID, &out)
	return out.String(), done, err
}

func TestCommandsNoAction(t *testing.T) {
	st := openTestStore(t)
	_, done, err := runArgs(t, st, 0, "--name", "ignored")
	assert.False(t, done)
	assert.NoError(t, err)
}

func TestCommandsLocations(t *testing.T) {
	st := openTestStore(t)
	theme, err := st.CreateTheme("Kyoto")
	require.NoError(t, err)

	out, done, err := runArgs(t, st, theme.ID, "--add-location", "--name", "Kinkaku-ji", "--at", "35.0394,135.7292")
	require.NoError(t, err)
	assert.True(t, done)
	assert.Contains(t, out, "Kinkaku-ji")

	_, _, err = runArgs(t, st, theme.ID, "--add-location", "--at", "35.0394")
	assert.Error(t, err)
	_, _, err = runArgs(t, st, 0, "--add-location", "--at", "35,135")
	assert.Error(t, err)

	locs, err := st.Locations(theme.ID)
	require.NoError(t, err)
	require.Len(t, locs, 1)
	id := locs[0].ID

	_, _, err = runArgs(t, st, 0, "--edit-location", uintArg(id), "--name", "Golden Pavilion")
	require.NoError(t, err)
	loc, err := st.Location(id)
	require.NoError(t, err)
	assert.Equal(t, "Golden Pavilion", loc.Name)
	assert.Equal(t, 35.0394, loc.Latitude)

	_, _, err = runArgs(t, st, 0, "--edit-location", uintArg(id), "--at", "35.04,135.73")
	require.NoError(t, err)
	loc, err = st.Location(id)
	require.NoError(t, err)
	assert.Equal(t, "Golden Pavilion", loc.Name)
	assert.Equal(t, 135.73, loc.Longitude)

	out, _, err = runArgs(t, st, theme.ID, "--list-locations")
	require.NoError(t, err)
	assert.Contains(t, out, "Golden Pavilion\t35.040000,135.730000")

	_, _, err = runArgs(t, st, 0, "--delete-location", uintArg(id))
	require.NoError(t, err)
	_, err = st.Location(id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCommandsPhotos(t *testing.T) {
	st := openTestStore(t)
	theme, err := st.CreateTheme("Fuji")
	require.NoError(t, err)
	loc, err := st.AddLocation(theme.ID, "Summit", 35.3606, 138.7274)
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "sunrise.JPG")
	require.NoError(t, os.WriteFile(src, []byte("jpeg bytes"), 0o644))

	_, _, err = runArgs(t, st, 0, "--add-photo", src)
	assert.Error(t, err, "location is required")
	_, _, err = runArgs(t, st, 0, "--add-photo", src, "--location", uintArg(loc.ID), "--taken", "yesterday")
	assert.Error(t, err)

	out, done, err := runArgs(t, st, 0, "--add-photo", src, "--location", uintArg(loc.ID),
		"--caption", "Sunrise", "--taken", "2024-08-01 04:50")
	require.NoError(t, err)
	assert.True(t, done)
	assert.Contains(t, out, "added photo")

	photos, err := st.Photos(theme.ID)
	require.NoError(t, err)
	require.Len(t, photos, 1)
	p := photos[0]
	assert.Equal(t, "Sunrise", p.Caption)
	assert.True(t, strings.HasSuffix(p.ImagePath, ".jpg"))
	require.NotNil(t, p.TakenAt)
	assert.Equal(t, "2024-08-01 04:50", p.TakenAt.Format("2006-01-02 15:04"))
	stored := filepath.Join(st.MediaDir(), filepath.FromSlash(p.ImagePath))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))

	_, _, err = runArgs(t, st, 0, "--delete-photo", uintArg(p.ID))
	require.NoError(t, err)
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))
}

func TestCommandsListThemes(t *testing.T) {
	st := openTestStore(t)
	_, err := st.CreateTheme("Japan")
	require.NoError(t, err)
	out, done, err := runArgs(t, st, 0, "--list-themes")
	require.NoError(t, err)
	assert.True(t, done)
	assert.Contains(t, out, "\tJapan\n")
}

func TestExportGallery(t *testing.T) {
	st := openTestStore(t)
	theme, err := st.CreateTheme("Fuji")
	require.NoError(t, err)
	loc, err := st.AddLocation(theme.ID, "Summit", 35.3606, 138.7274)
	require.NoError(t, err)
	_, err = st.AddPhoto(theme.ID, loc.ID, strings.NewReader("x"), "png", "Crater", nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "gallery.html")
	assert.Error(t, exportGallery(st, 0, path))
	require.NoError(t, exportGallery(st, theme.ID, path))
	html, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Crater")
	assert.Contains(t, string(html), "Date: N/A")
}

func uintArg(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
