// Copyright 2026 The bitrec Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpowers/bitrec/search"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "memory_mapped.dat", cfg.Store)
	assert.Equal(t, int64(1<<27), cfg.Capacity)
	assert.Equal(t, search.Linear, cfg.Mode())
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bitrec.yaml")
	contents := `
store: /tmp/records.dat
capacity: 1000
search_mode: binary
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/records.dat", cfg.Store)
	assert.Equal(t, int64(1000), cfg.Capacity)
	assert.Equal(t, search.Binary, cfg.Mode())
	// unset fields keep their defaults
	assert.Equal(t, "dataset.txt", cfg.Dataset)
	assert.Equal(t, "zstd", cfg.SnapshotCodec)

	level, err := ParseLevel(cfg.Logging.Level)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	dir := t.TempDir()
	for name, contents := range map[string]string{
		"syntax.yaml":   "store: [unterminated",
		"mode.yaml":     "search_mode: quadratic",
		"codec.yaml":    "snapshot_codec: gzip",
		"level.yaml":    "logging:\n  level: loud",
		"capacity.yaml": "capacity: -5",
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
		_, err := Load(path)
		assert.Error(t, err, name)
	}
}
