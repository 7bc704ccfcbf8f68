package logger

import (
	"io"
	"log"
)

// Log flags
const (
	LstdFlags     = log.LstdFlags
	Lmicroseconds = log.Lmicroseconds
)

// Logger wraps the standard log.Logger with a verbose switch for progress output
type Logger struct {
	*log.Logger
	verbose bool
}

// NewWriter creates a new logger that writes to the provided writer
func NewWriter(w io.Writer) *Logger {
	return &Logger{
		Logger: log.New(w, "", log.LstdFlags),
	}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return NewWriter(io.Discard)
}

// SetVerbose enables or disables Verbosef output
func (l *Logger) SetVerbose(v bool) {
	l.verbose = v
}

// Verbose reports whether verbose output is enabled
func (l *Logger) Verbose() bool {
	return l.verbose
}

// Verbosef logs only when verbose output is enabled
func (l *Logger) Verbosef(format string, args ...any) {
	if l.verbose {
		l.Printf(format, args...)
	}
}
