package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/go-logr/logr"
)

var (
	infoColor  = color.New(color.FgGreen).SprintFunc()
	debugColor = color.New(color.FgCyan).SprintFunc()
	traceColor = color.New(color.FgYellow).SprintFunc()
	errorColor = color.New(color.FgRed).SprintFunc()
)

// SimpleLogSink is a logr.LogSink producing single-line human-readable
// output with an optional colored level label.
type SimpleLogSink struct {
	writer       io.Writer
	minVerbosity int
	name         string
	keyValues    []interface{}
	useColor     bool
	mutex        sync.Mutex
}

// NewSimpleLogSink creates a sink writing to writer (os.Stdout when nil)
// that drops messages above minVerbosity.
func NewSimpleLogSink(writer io.Writer, minVerbosity int, useColor bool) *SimpleLogSink {
	if writer == nil {
		writer = os.Stdout
	}
	return &SimpleLogSink{
		writer:       writer,
		minVerbosity: minVerbosity,
		useColor:     useColor,
	}
}

// Init implements logr.LogSink.
func (s *SimpleLogSink) Init(info logr.RuntimeInfo) {}

// Enabled reports whether messages at the given verbosity are written.
func (s *SimpleLogSink) Enabled(level int) bool {
	return level <= s.minVerbosity
}

// Info writes a non-error message with its key-value pairs.
func (s *SimpleLogSink) Info(level int, msg string, keysAndValues ...interface{}) {
	if !s.Enabled(level) {
		return
	}
	s.write(s.label(level, false), msg, keysAndValues...)
}

// Error writes an error message with its key-value pairs.
func (s *SimpleLogSink) Error(err error, msg string, keysAndValues ...interface{}) {
	if err != nil {
		keysAndValues = append(keysAndValues, "error", err)
	}
	s.write(s.label(0, true), msg, keysAndValues...)
}

// WithValues returns a sink that prepends additional key-value pairs.
func (s *SimpleLogSink) WithValues(keysAndValues ...interface{}) logr.LogSink {
	clone := s.clone()
	clone.keyValues = append(clone.keyValues, keysAndValues...)
	return clone
}

// WithName returns a sink with a dotted name prefix.
func (s *SimpleLogSink) WithName(name string) logr.LogSink {
	clone := s.clone()
	if clone.name != "" {
		name = clone.name + "." + name
	}
	clone.name = name
	return clone
}

func (s *SimpleLogSink) clone() *SimpleLogSink {
	return &SimpleLogSink{
		writer:       s.writer,
		minVerbosity: s.minVerbosity,
		name:         s.name,
		keyValues:    append([]interface{}{}, s.keyValues...),
		useColor:     s.useColor,
	}
}

func (s *SimpleLogSink) label(level int, isError bool) string {
	var text string
	var colorize func(a ...interface{}) string
	switch {
	case isError:
		text, colorize = "[ERROR]", errorColor
	case level >= TRACE:
		text, colorize = "[TRACE]", traceColor
	case level == DEBUG:
		text, colorize = "[DEBUG]", debugColor
	default:
		text, colorize = "[INFO]", infoColor
	}
	if s.useColor {
		return colorize(text)
	}
	return text
}

func (s *SimpleLogSink) write(label, msg string, keysAndValues ...interface{}) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var sb strings.Builder
	sb.WriteString(label)
	sb.WriteByte(' ')
	if s.name != "" {
		fmt.Fprintf(&sb, "[%s] ", s.name)
	}
	sb.WriteString(msg)

	pairs := append(append([]interface{}{}, s.keyValues...), keysAndValues...)
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			key = fmt.Sprintf("key%d", i/2)
		}
		fmt.Fprintf(&sb, " %s=%v", key, pairs[i+1])
	}

	fmt.Fprintln(s.writer, sb.String())
}

// NewSimpleLogger returns a logr.Logger backed by a SimpleLogSink.
func NewSimpleLogger(writer io.Writer, minVerbosity int, useColor bool) logr.Logger {
	return logr.New(NewSimpleLogSink(writer, minVerbosity, useColor))
}
