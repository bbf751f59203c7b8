// Package log provides a leveled, structured logger for the whole module,
// backed by zerolog. Call Init once at startup; the package-level helpers
// are safe for concurrent use.
package log

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

var (
	logger zerolog.Logger
	level  string
)

func init() {
	// usable defaults for code that logs before Init runs (tests, mostly)
	logger = zerolog.New(consoleWriter(os.Stderr)).With().Timestamp().Logger().Level(zerolog.InfoLevel)
	level = LogLevelInfo
}

func consoleWriter(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
}

// Init configures the package logger. Output is "stdout", "stderr" or a file
// path. An optional errWriter receives a copy of every error-level entry.
func Init(logLevel, output string, errWriter io.Writer) {
	var out io.Writer
	switch output {
	case "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			panic(fmt.Sprintf("cannot open log output %q: %v", output, err))
		}
		out = f
	}
	zl, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		zl = zerolog.InfoLevel
		logLevel = LogLevelInfo
	}
	writers := []io.Writer{consoleWriter(out)}
	if errWriter != nil {
		writers = append(writers, errorLevelWriter{errWriter})
	}
	logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().Timestamp().Logger().Level(zl)
	level = logLevel
}

// Level returns the configured level string.
func Level() string {
	return level
}

// errorLevelWriter forwards only error-level (and above) entries.
type errorLevelWriter struct {
	w io.Writer
}

func (w errorLevelWriter) Write(p []byte) (int, error) {
	// discard silently; WriteLevel does the filtering
	return len(p), nil
}

func (w errorLevelWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l < zerolog.ErrorLevel {
		return len(p), nil
	}
	return w.w.Write(p)
}

func withFields(ev *zerolog.Event, keyvalues ...any) *zerolog.Event {
	for i := 0; i+1 < len(keyvalues); i += 2 {
		key, ok := keyvalues[i].(string)
		if !ok {
			key = fmt.Sprint(keyvalues[i])
		}
		ev = ev.Interface(key, keyvalues[i+1])
	}
	return ev
}

func Debug(args ...any) { logger.Debug().Msg(fmt.Sprint(args...)) }
func Info(args ...any)  { logger.Info().Msg(fmt.Sprint(args...)) }
func Warn(args ...any)  { logger.Warn().Msg(fmt.Sprint(args...)) }
func Error(args ...any) { logger.Error().Msg(fmt.Sprint(args...)) }

func Debugf(format string, args ...any) { logger.Debug().Msgf(format, args...) }
func Infof(format string, args ...any)  { logger.Info().Msgf(format, args...) }
func Warnf(format string, args ...any)  { logger.Warn().Msgf(format, args...) }
func Errorf(format string, args ...any) { logger.Error().Msgf(format, args...) }

func Debugw(msg string, keyvalues ...any) { withFields(logger.Debug(), keyvalues...).Msg(msg) }
func Infow(msg string, keyvalues ...any)  { withFields(logger.Info(), keyvalues...).Msg(msg) }
func Warnw(msg string, keyvalues ...any)  { withFields(logger.Warn(), keyvalues...).Msg(msg) }
func Errorw(msg string, keyvalues ...any) { withFields(logger.Error(), keyvalues...).Msg(msg) }

func Fatal(args ...any) {
	logger.Fatal().Msg(fmt.Sprint(args...))
}

func Fatalf(format string, args ...any) {
	logger.Fatal().Msgf(format, args...)
}
