// Package obslog centralises structured logging for the simulator,
// grounded on core/util.go's slog setup: custom Trace/Waveform levels
// sitting above slog.LevelInfo, plus a pretty-table state dump used
// wherever a human needs to see netlist/pin state without the renderer.
package obslog

import (
	"context"
	"log/slog"
	"os"
)

const (
	// LevelTrace is for fine-grained parse/load/build diagnostics, noisier
	// than Info but not warnings.
	LevelTrace slog.Level = slog.LevelInfo + 1
	// LevelWaveform is for per-tick simulation state, the textual analogue
	// of a waveform viewer trace.
	LevelWaveform slog.Level = slog.LevelInfo + 2
)

var levelNames = map[slog.Leveler]string{
	LevelTrace:    "TRACE",
	LevelWaveform: "WAVE",
}

// Init installs a text handler at the given minimum level as the default
// slog logger. level accepts the stdlib names plus "trace"/"waveform".
func Init(level string) {
	lvl := ParseLevel(level)
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if l, ok := a.Value.Any().(slog.Level); ok {
					if name, ok := levelNames[l]; ok {
						a.Value = slog.StringValue(name)
					}
				}
			}
			return a
		},
	})
	slog.SetDefault(slog.New(h))
}

// ParseLevel maps a config string to a slog.Level, defaulting to Info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "trace":
		return LevelTrace
	case "waveform":
		return LevelWaveform
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Trace logs at LevelTrace using the default logger.
func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

// Waveform logs at LevelWaveform using the default logger.
func Waveform(msg string, args ...any) {
	slog.Log(context.Background(), LevelWaveform, msg, args...)
}

// Warn logs a non-fatal anomaly: an unknown primitive or unknown render
// task, per spec.md §7.
func Warn(msg string, args ...any) {
	slog.Warn(msg, args...)
}
