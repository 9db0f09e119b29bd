package disk

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachePutGet(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, err := New(dir)
	require.NoError(t, err)

	value := []byte("inventory")
	key := digest.FromString("archive bytes")
	require.NoError(t, c.Put(key, value))

	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, value, got)
	assert.Equal(t, int64(len(value)), c.SizeBytes())

	path := filepath.Join(dir, "sha256", key.Encoded()[:defaultShardPrefixLen], key.Encoded())
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestCacheShardDisable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, err := New(dir, WithShardPrefixLen(0))
	require.NoError(t, err)

	key := digest.FromString("flat")
	require.NoError(t, c.Put(key, []byte("v")))

	_, err = os.Stat(filepath.Join(dir, "sha256", key.Encoded()))
	require.NoError(t, err)
}

func TestCacheMiss(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir())
	require.NoError(t, err)

	_, ok := c.Get(digest.FromString("missing"))
	assert.False(t, ok)
}

func TestCacheRejectsBadKeys(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir())
	require.NoError(t, err)

	for _, key := range []digest.Digest{"", "nocolon", "sha256:", "sha256:../../etc", "../x:abcd"} {
		assert.Error(t, c.Put(key, []byte("v")), "key %q", key)
		_, ok := c.Get(key)
		assert.False(t, ok, "key %q", key)
	}
}

func TestCacheAlreadyCached(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir())
	require.NoError(t, err)

	key := digest.FromString("dup")
	require.NoError(t, c.Put(key, []byte("first")))
	require.NoError(t, c.Put(key, []byte("second")))

	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, []byte("first"), got)
	assert.Equal(t, int64(len("first")), c.SizeBytes())
}

func TestCacheDelete(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir())
	require.NoError(t, err)

	key := digest.FromString("gone")
	require.NoError(t, c.Put(key, []byte("value")))
	require.NoError(t, c.Delete(key))
	require.NoError(t, c.Delete(key))

	_, ok := c.Get(key)
	assert.False(t, ok)
	assert.Zero(t, c.SizeBytes())
}

func TestCacheMaxBytesEvictsOldest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, err := New(dir, WithMaxBytes(10))
	require.NoError(t, err)

	older := digest.FromString("older")
	newer := digest.FromString("newer")
	require.NoError(t, c.Put(older, []byte("123456")))

	// Make the first entry unambiguously older.
	path, err := c.path(older)
	require.NoError(t, err)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, past, past))

	require.NoError(t, c.Put(newer, []byte("abcdef")))

	_, ok := c.Get(older)
	assert.False(t, ok)
	_, ok = c.Get(newer)
	assert.True(t, ok)
	assert.LessOrEqual(t, c.SizeBytes(), int64(10))
}

func TestCacheSkipsOversizedValues(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir(), WithMaxBytes(4))
	require.NoError(t, err)

	key := digest.FromString("big")
	require.NoError(t, c.Put(key, []byte("too large")))
	_, ok := c.Get(key)
	assert.False(t, ok)
}

func TestNewRecomputesSize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, c.Put(digest.FromString("a"), []byte("12345")))

	// Leftover temp files from an interrupted Put are not counted.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cache-123"), []byte("partial"), 0o600))

	reopened, err := New(dir)
	require.NoError(t, err)
	assert.Equal(t, int64(5), reopened.SizeBytes())
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	_, err := New("")
	require.Error(t, err)
	_, err = New(t.TempDir(), WithMaxBytes(-1))
	require.Error(t, err)
	_, err = New(t.TempDir(), WithShardPrefixLen(-1))
	require.Error(t, err)
}
