// Package logging builds the application logger from the logLevel, logsDir and graylog.* settings.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
)

// FileName is the log file created in the logs directory.
const FileName = "photomap.log"

// Options selects the log outputs.
type Options struct {
	Level          string
	LogsDir        string // empty disables the log file
	GraylogAddress string // empty disables GELF output
	Console        io.Writer
}

// ParseLevel maps a configured level name to a zerolog level. Unknown names mean info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "TRACE":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

// Setup returns a logger writing to the console and the configured outputs,
// and a function closing the files it opened.
func Setup(opts Options) (zerolog.Logger, func() error, error) {
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	console := opts.Console
	if console == nil {
		console = os.Stdout
	}
	writers := []io.Writer{
		zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339},
	}
	closeFn := func() error { return nil }

	if opts.LogsDir != "" {
		if err := os.MkdirAll(opts.LogsDir, 0o755); err != nil {
			return zerolog.Nop(), closeFn, fmt.Errorf("creating logs dir: %w", err)
		}
		f, err := os.OpenFile(filepath.Join(opts.LogsDir, FileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), closeFn, fmt.Errorf("opening log file: %w", err)
		}
		writers = append(writers, zerolog.ConsoleWriter{Out: f, TimeFormat: time.RFC3339, NoColor: true})
		closeFn = f.Close
	}

	if opts.GraylogAddress != "" {
		gw, err := gelf.NewWriter(opts.GraylogAddress)
		if err != nil {
			return zerolog.Nop(), closeFn, fmt.Errorf("connecting to graylog: %w", err)
		}
		writers = append(writers, gw)
		fileClose := closeFn
		closeFn = func() error {
			gw.Close()
			return fileClose()
		}
	}

	log := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(opts.Level)).
		With().Timestamp().Logger()
	log.Info().Str("loglevel", log.GetLevel().String()).Msg("logging set up")
	return log, closeFn, nil
}
