package common

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

type Logger interface {
	Log(format string, args ...interface{})
}

// logger writes component-tagged lines through zerolog.
type logger struct {
	component string
	zl        zerolog.Logger
}

func NewLogger(component string) *logger {
	return NewLoggerTo(os.Stderr, component)
}

func NewLoggerTo(w io.Writer, component string) *logger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	return &logger{
		component: component,
		zl:        zerolog.New(out).With().Timestamp().Str("component", component).Logger(),
	}
}

func (l *logger) Log(format string, args ...interface{}) {
	l.zl.Info().Msg(fmt.Sprintf(format, args...))
}

// With returns a logger carrying an extra field, e.g. a run id.
func (l *logger) With(key, value string) Logger {
	return &logger{
		component: l.component,
		zl:        l.zl.With().Str(key, value).Logger(),
	}
}

type nopLogger struct{}

// NopLogger discards everything.
func NopLogger() Logger {
	return nopLogger{}
}

func (nopLogger) Log(string, ...interface{}) {}

// SetLevel sets the minimum level for every logger, e.g. "debug" or "warn".
// An empty level leaves the default.
func SetLevel(level string) error {
	if level == "" {
		return nil
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}
