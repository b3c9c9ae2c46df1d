// Package logger sets up structured logging with log/slog and provides an
// advice subscriber that logs every directive the strategy emits.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/rustyeddy/rsidaily/market/strategies"
)

// ParseLevel maps debug/info/warn/error onto slog levels. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// New builds a logger writing text or JSON to w with the service name
// embedded.
func New(w io.Writer, service string, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With(slog.String("service", service))
}

// Init creates a stderr logger and sets it as the slog default. Stdout is
// left to command output.
func Init(service, level, format string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	l := New(os.Stderr, service, lvl, format)
	slog.SetDefault(l)
	return l, nil
}

// AdviceLogger logs non-empty advice at info and holds at debug.
type AdviceLogger struct {
	Log        *slog.Logger
	Instrument string
}

func (a AdviceLogger) HandleAdvice(ev strategies.AdviceEvent) {
	l := a.Log
	if l == nil {
		l = slog.Default()
	}

	attrs := []any{
		slog.Time("time", ev.Time),
		slog.String("close", ev.Close.String()),
		slog.Float64("rsi", ev.RSI),
		slog.String("rule", ev.Rule.String()),
		slog.Int("duration", ev.State.Duration),
		slog.Int("wrong_count", ev.State.WrongCount),
	}
	if a.Instrument != "" {
		attrs = append(attrs, slog.String("instrument", a.Instrument))
	}

	if len(ev.Advice) == 0 {
		l.Debug("hold", attrs...)
		return
	}
	attrs = append(attrs, slog.String("advice", ev.Advice.String()), slog.String("reason", ev.Rule.Reason()))
	l.Info("advice", attrs...)
}
