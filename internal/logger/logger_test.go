// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logger

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) *strings.Builder {
	t.Helper()
	var buf strings.Builder
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetVerbose(false)
	})
	return &buf
}

func TestDebugSilentByDefault(t *testing.T) {
	buf := capture(t)
	SetVerbose(false)

	Debug("hidden %d", 1)
	Info("also hidden")
	assert.Empty(t, buf.String())
}

func TestVerboseEnablesDebugAndInfo(t *testing.T) {
	buf := capture(t)
	SetVerbose(true)

	Debug("message %d", 7)
	Info("pipeline step")
	assert.Contains(t, buf.String(), "[DEBUG] message 7")
	assert.Contains(t, buf.String(), "[INFO] pipeline step")
}

func TestSection(t *testing.T) {
	buf := capture(t)

	Section("Ingesting vault")
	assert.Empty(t, buf.String())

	SetVerbose(true)
	Section("Ingesting vault")
	assert.Equal(t, "\n=== Ingesting vault ===\n", buf.String())
}

func TestWarnAlwaysPrints(t *testing.T) {
	buf := capture(t)
	SetVerbose(false)

	Warn("skipping %s", "file.zip")
	assert.Equal(t, "[WARN] skipping file.zip\n", buf.String())
}
