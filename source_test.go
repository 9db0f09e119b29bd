package jarscan

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytesSource(t *testing.T) {
	t.Parallel()

	src := BytesSource("mem.jar", []byte("content"))
	assert.Equal(t, "mem.jar", src.Name())

	name, data, err := readSource(src)
	require.NoError(t, err)
	assert.Equal(t, "mem.jar", name)
	assert.Equal(t, []byte("content"), data)
}

func TestFileSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "lib.jar")
	require.NoError(t, os.WriteFile(path, []byte("jar bytes"), 0o644))

	src := FileSource(path)
	assert.Equal(t, "lib.jar", src.Name())

	rc, err := src.Open()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, []byte("jar bytes"), data)

	_, err = FileSource(filepath.Join(dir, "missing.jar")).Open()
	require.ErrorIs(t, err, ErrNotFound)

	_, err = FileSource(dir).Open()
	require.ErrorIs(t, err, ErrNotFound)

	_, err = FileSource("").Open()
	require.ErrorIs(t, err, ErrInvalidArgument)
}
