package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, zerolog.TraceLevel, ParseLevel("trace"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
}

func TestSetupWritesConsoleAndFile(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	log, closeFn, err := Setup(Options{Level: "debug", LogsDir: dir, Console: &console})
	require.NoError(t, err)
	log.Debug().Str("component", "test").Msg("hello file")
	require.NoError(t, closeFn())

	assert.Contains(t, console.String(), "hello file")
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
	assert.Contains(t, string(data), "component=test")
}

func TestSetupLevelFilters(t *testing.T) {
	var console bytes.Buffer
	log, _, err := Setup(Options{Level: "error", Console: &console})
	require.NoError(t, err)
	log.Info().Msg("quiet")
	log.Error().Msg("loud")
	assert.NotContains(t, console.String(), "quiet")
	assert.Contains(t, console.String(), "loud")
}
