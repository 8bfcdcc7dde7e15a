// Package logger holds the process-wide zerolog logger for the H2EAUX API.
// main builds it once with Init; code without an injected logger reads it
// back with Get.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options describes the logger main builds from configuration.
type Options struct {
	Level   string    // trace, debug, info, warn or error; anything else means info
	Pretty  bool      // console format for local runs, JSON otherwise
	Output  io.Writer // nil means os.Stdout
	Service string    // copied into every entry as "service" when set
}

var (
	mu     sync.Mutex
	global *zerolog.Logger
)

// Init builds the global logger from opts on first use. Later calls keep
// the logger already built and return it unchanged.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if global == nil {
		l := build(opts)
		global = &l
	}
	return *global
}

// Get returns the logger built by Init and panics if there is none yet.
func Get() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if global == nil {
		panic("logger: Init must run before Get")
	}
	return *global
}

// Reset forgets the global logger. Tests call it between cases.
func Reset() {
	mu.Lock()
	global = nil
	mu.Unlock()
}

func build(opts Options) zerolog.Logger {
	w := opts.Output
	if w == nil {
		w = os.Stdout
	}
	if opts.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	level := parseLevel(opts.Level)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(level)

	fields := zerolog.New(w).Level(level).With().Timestamp()
	if opts.Service != "" {
		fields = fields.Str("service", opts.Service)
	}
	return fields.Logger()
}

// parseLevel accepts the level names operators put in LOG_LEVEL. "warning"
// is an alias for warn.
func parseLevel(name string) zerolog.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		return zerolog.WarnLevel
	}
	switch level, err := zerolog.ParseLevel(name); {
	case err != nil, name == "":
		return zerolog.InfoLevel
	case level < zerolog.TraceLevel, level > zerolog.ErrorLevel:
		return zerolog.InfoLevel
	default:
		return level
	}
}
