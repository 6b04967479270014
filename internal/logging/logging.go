// Package logging configures the global zerolog logger for the CLI.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global logger. Verbosity 0 logs warnings and above,
// 1 adds info, 2 and beyond adds debug with caller information. Output goes
// to stderr and, when possible, to an append-mode log file in the user's
// state directory.
func Setup(verbosity int) {
	switch {
	case verbosity <= 0:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case verbosity == 1:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
	}

	writers := []io.Writer{consoleWriter}

	logPath, err := xdg.StateFile("dotup/dotup.log")
	var fileErr error
	if err == nil {
		var f *os.File
		f, fileErr = os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if fileErr == nil {
			writers = append(writers, f)
		}
	}

	log.Logger = zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()
	if verbosity >= 2 {
		log.Logger = log.Logger.With().Caller().Logger()
	}

	if fileErr != nil {
		log.Warn().Err(fileErr).Str("path", logPath).Msg("failed to open log file, logging to console only")
	}
}
