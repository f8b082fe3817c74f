package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Logger is a small leveled logger. A zero Logger discards everything.
type Logger struct {
	info    *log.Logger
	warning *log.Logger
	error_  *log.Logger
	debug   *log.Logger
	active  bool
	closer  io.Closer
}

// New returns a Logger writing to w. Debug lines are emitted only when
// debug is set.
func New(w io.Writer, debug bool) *Logger {
	l := &Logger{
		info:    log.New(w, "INFO: ", log.Ldate|log.Ltime),
		warning: log.New(w, "WARNING: ", log.Ldate|log.Ltime),
		error_:  log.New(w, "ERROR: ", log.Ldate|log.Ltime),
		active:  true,
	}
	if debug {
		l.debug = log.New(w, "DEBUG: ", log.Ldate|log.Ltime)
	}
	return l
}

// NewFile opens (or creates) logfilename in append mode and logs into it.
func NewFile(logfilename string, debug bool) (*Logger, error) {
	file, err := os.OpenFile(logfilename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o666)
	if err != nil {
		return nil, fmt.Errorf("open log file %q: %w", logfilename, err)
	}
	l := New(file, debug)
	l.closer = file
	return l, nil
}

// Discard returns an inactive Logger.
func Discard() *Logger {
	return &Logger{}
}

func (logger *Logger) Info(format string, args ...any) {
	if logger != nil && logger.active {
		logger.info.Printf(format, args...)
	}
}

func (logger *Logger) Warning(format string, args ...any) {
	if logger != nil && logger.active {
		logger.warning.Printf(format, args...)
	}
}

func (logger *Logger) Error(format string, args ...any) {
	if logger != nil && logger.active {
		logger.error_.Printf(format, args...)
	}
}

func (logger *Logger) Debug(format string, args ...any) {
	if logger != nil && logger.active && logger.debug != nil {
		logger.debug.Printf(format, args...)
	}
}

// Close releases the log file, if any.
func (logger *Logger) Close() error {
	if logger == nil || logger.closer == nil {
		return nil
	}
	return logger.closer.Close()
}
