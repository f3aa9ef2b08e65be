package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRespectsDebugLevel(t *testing.T) {
	var buf bytes.Buffer

	New(&buf, false).Debug("hidden")
	assert.Empty(t, buf.String())

	New(&buf, true).Debug("shown", slog.String("phase", "focus"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "focus", entry["phase"])
}

func TestDumpRendersStructs(t *testing.T) {
	var buf bytes.Buffer

	cfg := struct {
		Level string
		Apps  []string
	}{"strict", []string{"discord"}}

	New(&buf, true).Debug("config", Dump("config", cfg))

	assert.Contains(t, buf.String(), "strict")
	assert.Contains(t, buf.String(), "discord")
}

func TestInitializeWritesToFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "log", "focusguard.log")

	closer, err := Initialize(Options{Path: path})
	require.NoError(t, err)

	slog.Info("session started", slog.String("task", "t1"))

	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"session started"`)
}
