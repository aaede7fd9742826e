// Package logger provides the process-wide logrus loggers.  InfoLogger
// carries request and lifecycle messages, ErrorLogger carries failures.
// Both write to stdout and to a size-rotated file managed by lumberjack.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	InfoLogger  = logrus.New()
	ErrorLogger = logrus.New()
)

// Options configures Init.
type Options struct {
	File  string // rotating log file; empty disables file output
	Level string // logrus level name, defaults to info
	JSON  bool   // JSON formatter instead of text
}

// Init wires both loggers to their outputs.  It may be called once at
// startup; until then the loggers write text to stderr.
func Init(opts Options) {
	var out io.Writer = os.Stdout
	if opts.File != "" {
		_ = os.MkdirAll(filepath.Dir(opts.File), 0o755)
		out = io.MultiWriter(os.Stdout, NewRotatingWriter(opts.File))
	}
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	for _, l := range []*logrus.Logger{InfoLogger, ErrorLogger} {
		l.SetOutput(out)
		l.SetLevel(level)
		if opts.JSON {
			l.SetFormatter(&logrus.JSONFormatter{})
		} else {
			l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		}
	}
}

// NewRotatingWriter returns a lumberjack writer with the rotation policy
// used for every log file the service owns.
func NewRotatingWriter(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    20, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}
}

// Discard silences both loggers; tests call it to keep output clean.
func Discard() {
	InfoLogger.SetOutput(io.Discard)
	ErrorLogger.SetOutput(io.Discard)
}
