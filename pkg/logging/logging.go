package logging

import (
	"os"

	"github.com/go-logr/logr"
)

// Verbosity levels used with logr's V(). INFO maps to V(0).
const (
	INFO  = 0
	DEBUG = 1
	TRACE = 2
)

// defaultLogger is what the cmd tools log through. Libraries receive their
// logger explicitly and default to logr.Discard().
var defaultLogger = logr.Discard()

// InitLogger configures the process-wide default logger with a
// human-readable sink on stderr at the given level ("info", "debug" or
// "trace"; anything else means info).
func InitLogger(level *string) {
	verbosity := INFO
	if level != nil {
		switch *level {
		case "debug":
			verbosity = DEBUG
		case "trace":
			verbosity = TRACE
		}
	}
	defaultLogger = NewSimpleLogger(os.Stderr, verbosity, true)
}

// DefaultLogger returns the process-wide default logger.
func DefaultLogger() *Logger {
	return NewLogger(defaultLogger)
}

// Logger wraps logr.Logger with level-named methods to minimize the
// logging footprint in calling code.
type Logger struct {
	log logr.Logger
}

// NewLogger wraps log; a logger without a sink degrades to discard.
func NewLogger(log logr.Logger) *Logger {
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Logger{log: log}
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.log.V(INFO).Info(msg, keysAndValues...)
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.V(DEBUG).Info(msg, keysAndValues...)
}

func (l *Logger) Trace(msg string, keysAndValues ...interface{}) {
	l.log.V(TRACE).Info(msg, keysAndValues...)
}

func (l *Logger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(err, msg, keysAndValues...)
}
