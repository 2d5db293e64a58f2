package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(99).String())
}

func TestInitForCLIFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelWarn, &buf)

	Debug("Test", "dropped debug line")
	Info("Test", "dropped info line")
	Warn("Test", "kept warn line %d", 1)
	Error("Test", errors.New("boom"), "kept error line")

	out := buf.String()
	assert.NotContains(t, out, "dropped debug line")
	assert.NotContains(t, out, "dropped info line")
	assert.Contains(t, out, "kept warn line 1")
	assert.Contains(t, out, "kept error line")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "subsystem=Test")
}
