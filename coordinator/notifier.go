package coordinator

import (
	"github.com/rs/zerolog"
)

type nopNotifier struct{}

func (nopNotifier) Success(string, string) {}
func (nopNotifier) Failure(string, error)  {}

// LogNotifier reports mutation outcomes as log lines.
type LogNotifier struct {
	Logger zerolog.Logger
}

// Success logs a confirmed mutation at info.
func (n LogNotifier) Success(title, description string) {
	n.Logger.Info().Str("description", description).Msg(title)
}

// Failure logs a rolled back mutation at error.
func (n LogNotifier) Failure(title string, err error) {
	n.Logger.Error().Err(err).Msg(title)
}
