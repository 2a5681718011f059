package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Level: "warn", Stderr: &buf})
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown", zap.String("tool", "watermark_apply"))
	_ = log.Sync()

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "watermark_apply")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestNew_WritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watermark.log")
	log, err := New(Options{Level: "debug", File: path, Stderr: &bytes.Buffer{}})
	require.NoError(t, err)

	log.Debug("loaded", zap.Int("width", 640))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	line := strings.TrimSpace(strings.Split(string(data), "\n")[0])
	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &rec))
	assert.Equal(t, "DEBUG", rec["level"])
	assert.Equal(t, "loaded", rec["msg"])
	assert.EqualValues(t, 640, rec["width"])
}
