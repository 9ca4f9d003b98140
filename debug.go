package easel

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

var logger atomic.Pointer[log.Logger]

func init() {
	logger.Store(NewLogger(os.Stderr, log.WarnLevel))
}

// NewLogger returns a logger in the package's format: timestamped, prefixed
// with "easel", filtered at level.
func NewLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Prefix:          "easel",
	})
}

// SetLogger replaces the package logger. A nil logger discards everything.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard)
	}
	logger.Store(l)
}

// Logger returns the package logger.
func Logger() *log.Logger {
	return logger.Load()
}
