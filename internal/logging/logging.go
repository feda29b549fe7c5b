// Package logging routes the standard logger to a rotating file. The
// terminal belongs to the radar display, so nothing is written to stderr
// once Setup has run.
package logging

import (
	"io"
	"log"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/unklstewy/sweepscope/pkg/config"
)

// NewWriter returns the rotating log file described by cfg, or a writer that
// discards everything when no file is configured.
func NewWriter(cfg config.LoggingConfig) io.WriteCloser {
	if cfg.File == "" {
		return nopCloser{io.Discard}
	}

	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB, // MB
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}

// Setup points the standard logger at the configured file plus any extra
// writers (the tview log panel). The returned closer flushes and closes the
// file; call it after the display has been torn down.
func Setup(cfg config.LoggingConfig, extra ...io.Writer) io.Closer {
	w := NewWriter(cfg)

	writers := append([]io.Writer{w}, extra...)
	log.SetOutput(io.MultiWriter(writers...))
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	return w
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
