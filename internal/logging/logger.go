// Package logging builds the zerolog logger shared by the server and the client tools.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Settings selects the level, format and destination of log output.
type Settings struct {
	Level  string
	Format string
	Output io.Writer
}

// New creates a timestamped logger. Unknown levels fall back to info.
func New(settings Settings) zerolog.Logger {
	out := settings.Output
	if out == nil {
		out = os.Stderr
	}
	if strings.EqualFold(settings.Format, FormatConsole) {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(settings.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
