package testutil

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/klauspost/compress/zip"
)

// MultiReleaseManifest is a manifest declaring a multi-release archive.
const MultiReleaseManifest = "Manifest-Version: 1.0\r\nMulti-Release: true\r\n\r\n"

// PlainManifest is a manifest without any multi-release declaration.
const PlainManifest = "Manifest-Version: 1.0\r\nCreated-By: testutil\r\n\r\n"

// ZipEntry is a named entry written by BuildZip. Names ending in "/" are
// written as directories.
type ZipEntry struct {
	Name string
	Data []byte
}

// BuildZip writes entries, in order, into an in-memory zip archive.
func BuildZip(tb testing.TB, entries ...ZipEntry) []byte {
	tb.Helper()
	data, err := Zip(entries...)
	if err != nil {
		tb.Fatalf("build zip: %v", err)
	}
	return data
}

// Zip is BuildZip without a testing.TB, for use in benchmarks and generators.
func Zip(entries ...ZipEntry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", e.Name, err)
		}
		if len(e.Data) > 0 {
			if _, err := w.Write(e.Data); err != nil {
				return nil, fmt.Errorf("write %s: %w", e.Name, err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildJar writes a jar whose first entry is META-INF/MANIFEST.MF holding
// manifest. An empty manifest omits the entry.
func BuildJar(tb testing.TB, manifest string, entries ...ZipEntry) []byte {
	tb.Helper()
	all := make([]ZipEntry, 0, len(entries)+1)
	if manifest != "" {
		all = append(all, ZipEntry{Name: "META-INF/MANIFEST.MF", Data: []byte(manifest)})
	}
	all = append(all, entries...)
	return BuildZip(tb, all...)
}
