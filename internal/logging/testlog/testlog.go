package testlog

import (
	"testing"

	"github.com/rs/zerolog"

	"flashio/internal/logging"
)

// Start configures test logging and returns a logger that writes through t.
func Start(t *testing.T) zerolog.Logger {
	t.Helper()
	logging.ConfigureTests()
	l := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel).With().Str("test", t.Name()).Logger()
	l.Info().Msg("start")
	return l
}
