package logging

import (
	"io"
	"log/slog"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Format names accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatZap  = "zap"
)

// Options selects a logging backend.
//
// File, when set, sends output to a rotating file instead of stdout.
type Options struct {
	Format string
	File   string
	Debug  bool
}

// New builds a Logger for the given options. Unknown formats fall back to
// slog's text handler.
func New(o Options) Logger {
	if o.Format == FormatZap {
		level := zapcore.InfoLevel
		if o.Debug {
			level = zapcore.DebugLevel
		}
		return NewZapLogger(zap.New(newZapCore(o.File, level, zapcore.AddSync(os.Stdout))))
	}

	var w io.Writer = os.Stdout
	if o.File != "" {
		w = &lumberjack.Logger{Filename: o.File, MaxSize: 50, MaxBackups: 5, MaxAge: 14}
	}

	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if o.Debug {
		opts.Level = slog.LevelDebug
	}

	var h slog.Handler
	if o.Format == FormatJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return NewSlogLogger(slog.New(h))
}
