package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/jarscan"
	"github.com/meigma/jarscan/internal/testutil"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c := New(&out, io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeJar(t *testing.T, dir, name string) string {
	t.Helper()
	inner := testutil.BuildJar(t, "", testutil.ZipEntry{
		Name: "com/example/Inner.class",
		Data: testutil.ClassBytes(testutil.ClassSpec{Name: "com/example/Inner", Super: "java/lang/Object"}),
	})
	data := testutil.BuildJar(t, testutil.PlainManifest,
		testutil.ZipEntry{
			Name: "com/example/Foo.class",
			Data: testutil.ClassBytes(testutil.ClassSpec{Name: "com/example/Foo", Super: "java/lang/Object"}),
		},
		testutil.ZipEntry{Name: "app.properties", Data: []byte("a=b")},
		testutil.ZipEntry{Name: "lib/inner.jar", Data: inner},
	)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func writeWar(t *testing.T, dir string) string {
	t.Helper()
	jarDir := t.TempDir()
	b, err := os.ReadFile(writeJar(t, jarDir, "b.jar"))
	require.NoError(t, err)
	data := testutil.BuildJar(t, testutil.PlainManifest,
		testutil.ZipEntry{Name: "WEB-INF/lib/Beta.jar", Data: b},
		testutil.ZipEntry{Name: "WEB-INF/lib/alpha.jar", Data: b},
	)
	path := filepath.Join(dir, "app.war")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestJarCommandJSON(t *testing.T) {
	t.Parallel()

	path := writeJar(t, t.TempDir(), "app.jar")
	out, err := execute(t, "jar", "--format", "json", "--class-loader", "App", path)
	require.NoError(t, err)

	var r report
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	require.Len(t, r.Archives, 2)
	assert.Equal(t, "app.jar!/lib/inner.jar", r.Archives[0].Name)
	assert.Equal(t, "app.jar", r.Archives[1].Name)
	assert.Equal(t, []string{"com/example/Foo"}, r.Archives[1].Classes)
	assert.Equal(t, []string{"app.properties"}, r.Archives[1].Resources)
	assert.Contains(t, r.Archives[1].Digest, "sha256:")
	assert.Empty(t, r.Problems)
}

func TestJarCommandText(t *testing.T) {
	t.Parallel()

	path := writeJar(t, t.TempDir(), "app.jar")
	out, err := execute(t, "jar", "--digest", "blake3", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ARCHIVE")
	assert.Contains(t, out, "app.jar!/lib/inner.jar")
	assert.Contains(t, out, "blake3:")
}

func TestWarCommandOCI(t *testing.T) {
	t.Parallel()

	path := writeWar(t, t.TempDir())
	out, err := execute(t, "war", "--format", "oci", "--workers", "2", "--policy", "strict", path)
	require.NoError(t, err)

	var descs []ocispec.Descriptor
	require.NoError(t, json.Unmarshal([]byte(out), &descs))
	titles := make([]string, len(descs))
	for i, d := range descs {
		assert.Equal(t, jarscan.MediaTypeJavaArchive, d.MediaType)
		titles[i] = d.Annotations[ocispec.AnnotationTitle]
	}
	assert.Equal(t, []string{"alpha.jar", "alpha.jar!/lib/inner.jar", "Beta.jar", "Beta.jar!/lib/inner.jar"}, titles)
}

func TestCommandErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeJar(t, dir, "app.jar")

	_, err := execute(t, "jar", "--format", "xml", path)
	require.Error(t, err)

	_, err = execute(t, "jar", "--digest", "md5", path)
	require.Error(t, err)

	_, err = execute(t, "war", "--policy", "sometimes", path)
	require.Error(t, err)

	_, err = execute(t, "jar", filepath.Join(dir, "missing.jar"))
	require.ErrorIs(t, err, jarscan.ErrNotFound)

	_, err = execute(t, "jar")
	require.Error(t, err)

	_, err = execute(t, "--config", filepath.Join(dir, "jarscan.ini"), "jar", path)
	require.Error(t, err)
}

func TestCacheCommands(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	cfgPath := filepath.Join(dir, "jarscan.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[cache]\nenabled = true\ndir = \""+filepath.ToSlash(cacheDir)+"\"\n"), 0o644))
	path := writeJar(t, dir, "app.jar")

	first, err := execute(t, "--config", cfgPath, "jar", "--format", "json", path)
	require.NoError(t, err)
	second, err := execute(t, "--config", cfgPath, "jar", "--format", "json", path)
	require.NoError(t, err)
	assert.JSONEq(t, first, second)

	out, err := execute(t, "--config", cfgPath, "cache", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.ToSlash(cacheDir)+"\n", out)

	out, err = execute(t, "--config", cfgPath, "cache", "size")
	require.NoError(t, err)
	assert.NotEqual(t, "0 B\n", out)

	_, err = execute(t, "--config", cfgPath, "cache", "prune", "--max-bytes", "0")
	require.NoError(t, err)

	out, err = execute(t, "--config", cfgPath, "cache", "size")
	require.NoError(t, err)
	assert.Equal(t, "0 B\n", out)
}

func TestFormatHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KiB", formatBytes(1536))
	assert.Equal(t, "2.0 MiB", formatBytes(2<<20))
	assert.Equal(t, "9,11", formatReleases([]int{9, 11}))
	assert.Equal(t, "sha256:0123456789ab", shortDigest("sha256:0123456789abcdef"))
	assert.Equal(t, "short", shortDigest("short"))
}

func TestJarCommandURL(t *testing.T) {
	t.Parallel()

	data, err := os.ReadFile(writeJar(t, t.TempDir(), "app.jar"))
	require.NoError(t, err)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(data)
	}))
	t.Cleanup(server.Close)

	out, err := execute(t, "jar", "--format", "json", server.URL+"/libs/remote.jar")
	require.NoError(t, err)

	var r report
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	require.Len(t, r.Archives, 2)
	assert.Equal(t, "remote.jar", r.Archives[1].Name)
}
