package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global logger
func Init(level, format string) {
	InitWithWriter(level, format, os.Stderr)
}

// InitWithWriter initializes the global logger writing to out. The CLI keeps
// stdout for command output, so logs go to stderr by default.
func InitWithWriter(level, format string, out io.Writer) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if format == "console" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// Component returns a child of the global logger tagged with a component name
func Component(name string) zerolog.Logger {
	return log.Logger.With().Str("component", name).Logger()
}
