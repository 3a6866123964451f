// Package logger provides the process-wide structured logger backed by
// zerolog. Initialise once at startup with Init, retrieve anywhere with Get.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	instance zerolog.Logger
	once     sync.Once
)

// Init builds the singleton logger. Only the first call has any effect.
// Pretty enables human-readable console output for local development;
// production should keep it off and emit JSON.
func Init(level string, pretty bool) zerolog.Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano

		var out io.Writer = os.Stdout
		if pretty {
			out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		}

		instance = zerolog.New(out).
			Level(parseLevel(level)).
			With().
			Timestamp().
			Logger()
	})
	return instance
}

// Get returns the singleton logger. Falls back to a default stdout logger
// when Init has not run, so library code and tests never have to care.
func Get() zerolog.Logger {
	Init("info", false)
	return instance
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
