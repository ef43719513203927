package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, WarnLevel)

	log.Debug("hidden stage")
	log.Warn("visible stage", "stage", "validate")

	assert.NotContains(t, buf.String(), "hidden stage")
	assert.Contains(t, buf.String(), "visible stage")
	assert.Contains(t, buf.String(), "stage=validate")
}

func TestLogger_WithCarriesKeys(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, DebugLevel).With("build", "abc123")

	log.Debug("derive")

	assert.Contains(t, buf.String(), "build=abc123")
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard().With("k", "v").Error("dropped")
	})
}
