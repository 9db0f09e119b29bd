package zipstream

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/jarscan/internal/testutil"
)

func TestCursorStoredOrder(t *testing.T) {
	t.Parallel()

	data := testutil.BuildZip(t,
		testutil.ZipEntry{Name: "z/"},
		testutil.ZipEntry{Name: "z/last.txt", Data: []byte("last")},
		testutil.ZipEntry{Name: "a.txt", Data: []byte("first")},
	)
	c, err := Open(data, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	var names []string
	var dirs []bool
	for {
		e, err := c.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, e.Name)
		dirs = append(dirs, e.IsDir)
	}
	assert.Equal(t, []string{"z/", "z/last.txt", "a.txt"}, names)
	assert.Equal(t, []bool{true, false, false}, dirs)

	_, err = c.Next()
	assert.Equal(t, io.EOF, err)
}

func TestEntryReadAll(t *testing.T) {
	t.Parallel()

	content := bytes.Repeat([]byte("jar"), 1000)
	data := testutil.BuildZip(t, testutil.ZipEntry{Name: "big.bin", Data: content})
	c, err := Open(data, 0)
	require.NoError(t, err)

	e, err := c.Next()
	require.NoError(t, err)
	assert.Equal(t, uint64(len(content)), e.Size())
	got, err := e.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestEntryReadAllLimit(t *testing.T) {
	t.Parallel()

	data := testutil.BuildZip(t, testutil.ZipEntry{Name: "big.bin", Data: make([]byte, 128)})
	c, err := Open(data, 64)
	require.NoError(t, err)

	e, err := c.Next()
	require.NoError(t, err)
	_, err = e.ReadAll()
	require.ErrorIs(t, err, ErrEntryTooLarge)
}

func TestManifest(t *testing.T) {
	t.Parallel()

	data := testutil.BuildJar(t, testutil.MultiReleaseManifest, testutil.ZipEntry{Name: "a.txt"})
	c, err := Open(data, 0)
	require.NoError(t, err)

	m, ok, err := c.Manifest()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, testutil.MultiReleaseManifest, string(m))

	// Manifest lookup must not advance the cursor.
	e, err := c.Next()
	require.NoError(t, err)
	assert.Equal(t, ManifestName, e.Name)
}

func TestManifestAbsent(t *testing.T) {
	t.Parallel()

	c, err := Open(testutil.BuildZip(t, testutil.ZipEntry{Name: "a.txt"}), 0)
	require.NoError(t, err)
	_, ok, err := c.Manifest()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpenInvalid(t *testing.T) {
	t.Parallel()

	_, err := Open([]byte("not a zip"), 0)
	require.Error(t, err)
	_, err = Open(nil, 0)
	require.Error(t, err)
}
