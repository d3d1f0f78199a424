// Package logger is the process-wide structured logger. Call sites pass a
// message followed by alternating key/value pairs:
//
//	logger.Error("failed to spawn xet tool", "hash", hash, "err", err)
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var global = zerolog.New(os.Stdout).With().Timestamp().Logger()

// InitGlobalLogger replaces the global logger. It must be called once at
// startup, before any request is served.
func InitGlobalLogger(cfg *Config) {
	var w io.Writer = os.Stdout
	if cfg.Target == "stderr" {
		w = os.Stderr
	}

	global = newLogger(w, cfg)
}

func newLogger(w io.Writer, cfg *Config) zerolog.Logger {
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func Debug(msg string, keyvals ...any) {
	withFields(global.Debug(), keyvals).Msg(msg)
}

func Info(msg string, keyvals ...any) {
	withFields(global.Info(), keyvals).Msg(msg)
}

func Warn(msg string, keyvals ...any) {
	withFields(global.Warn(), keyvals).Msg(msg)
}

func Error(msg string, keyvals ...any) {
	withFields(global.Error(), keyvals).Msg(msg)
}

func withFields(e *zerolog.Event, keyvals []any) *zerolog.Event {
	if e == nil {
		return nil
	}

	for i := 0; i < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			key = fmt.Sprint(keyvals[i])
		}

		if i+1 == len(keyvals) {
			e = e.Str("!missing", key)

			break
		}

		switch v := keyvals[i+1].(type) {
		case error:
			e = e.AnErr(key, v)
		case string:
			e = e.Str(key, v)
		case fmt.Stringer:
			e = e.Stringer(key, v)
		default:
			e = e.Interface(key, v)
		}
	}

	return e
}
