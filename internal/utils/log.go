package utils

import (
	"os"

	"github.com/rs/zerolog"
)

// Log is the logger shared by every stage of the run.
var Log zerolog.Logger

func SetLogger() {
	level := zerolog.InfoLevel

	if os.Getenv("KICKSTART_SETUP_DEBUG") != "" {
		level = zerolog.DebugLevel
	}

	Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}
