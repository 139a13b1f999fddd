package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimpleLogSinkLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewSimpleLogger(&buf, DEBUG, false)

	log.Info("info message")
	log.V(DEBUG).Info("debug message")
	log.V(TRACE).Info("trace message")

	out := buf.String()
	require.Contains(t, out, "[INFO] info message")
	require.Contains(t, out, "[DEBUG] debug message")
	require.NotContains(t, out, "trace message")
}

func TestSimpleLogSinkKeyValues(t *testing.T) {
	var buf bytes.Buffer
	log := NewSimpleLogger(&buf, INFO, false)

	log.Info("loaded", "entries", 42, "size", 1024)
	require.Contains(t, buf.String(), "loaded entries=42 size=1024")
}

func TestSimpleLogSinkError(t *testing.T) {
	var buf bytes.Buffer
	log := NewSimpleLogger(&buf, INFO, false)

	log.Error(errors.New("boom"), "decode failed", "input", "a.bej")

	out := buf.String()
	require.Contains(t, out, "[ERROR] decode failed")
	require.Contains(t, out, "input=a.bej")
	require.Contains(t, out, "error=boom")
}

func TestSimpleLogSinkWithNameAndValues(t *testing.T) {
	var buf bytes.Buffer
	log := NewSimpleLogger(&buf, INFO, false).WithName("dictionary").WithValues("kind", "schema")

	log.Info("loaded")
	require.Contains(t, buf.String(), "[dictionary] loaded kind=schema")
}

func TestLoggerWrapper(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(NewSimpleLogger(&buf, TRACE, false))

	l.Info("one")
	l.Debug("two")
	l.Trace("three")
	l.Error(nil, "four")

	out := buf.String()
	require.Contains(t, out, "[INFO] one")
	require.Contains(t, out, "[DEBUG] two")
	require.Contains(t, out, "[TRACE] three")
	require.Contains(t, out, "[ERROR] four")
}
