package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/jarscan"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefault(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, jarscan.Lenient, cfg.FailurePolicy())
	assert.Equal(t, jarscan.DefaultWarTimeout, cfg.Timeout)
}

func TestLoadTOML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "jarscan.toml", `
workers = 4
timeout = "90s"
policy = "strict"
digest = "blake3"

[cache]
enabled = true
dir = "/var/cache/jarscan"
max_bytes = 1048576
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, jarscan.Strict, cfg.FailurePolicy())
	assert.Equal(t, jarscan.BLAKE3, cfg.Digester().Digest(nil).Algorithm())
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, int64(1048576), cfg.Cache.MaxBytes)

	// Unset fields keep their defaults.
	assert.Equal(t, jarscan.DefaultClassLoader, cfg.ClassLoader)
	assert.Equal(t, jarscan.DefaultMaxEntrySize, cfg.MaxEntrySize)

	dir, err := cfg.CacheDir()
	require.NoError(t, err)
	assert.Equal(t, "/var/cache/jarscan", dir)
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "jarscan.yml", `
workers: 2
timeout: 5m
class_loader: App
cache:
  max_bytes: 2048
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 5*time.Minute, cfg.Timeout)
	assert.Equal(t, "App", cfg.ClassLoader)
	assert.Equal(t, "lenient", cfg.Policy)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, int64(2048), cfg.Cache.MaxBytes)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
		target  error
	}{
		{name: "unknown extension", file: "jarscan.ini", content: "workers=1", target: ErrUnknownFormat},
		{name: "bad toml", file: "bad.toml", content: "workers = ["},
		{name: "bad yaml", file: "bad.yaml", content: "workers: [1"},
		{name: "negative workers", file: "neg.toml", content: "workers = -1"},
		{name: "unknown policy", file: "policy.yaml", content: "policy: sometimes"},
		{name: "unknown digest", file: "digest.yaml", content: "digest: md5"},
		{name: "negative cache size", file: "cache.toml", content: "[cache]\nmax_bytes = -5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			if tt.target != nil {
				require.ErrorIs(t, err, tt.target)
			}
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")

	dir, err := DefaultCacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "jarscan"), dir)

	dir, err = Default().CacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "jarscan"), dir)
}
