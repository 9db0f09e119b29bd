// Package zipstream provides a sequential entry cursor over an in-memory
// zip archive.
//
// A Cursor yields entries in the order they are stored in the archive's
// central directory. It is not safe for concurrent use; callers that fan
// work out must copy entry bytes with ReadAll before handing them to
// another goroutine.
package zipstream

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"
)

// ManifestName is the path of the JAR manifest.
const ManifestName = "META-INF/MANIFEST.MF"

// ErrEntryTooLarge is returned when an entry exceeds the configured size limit.
var ErrEntryTooLarge = errors.New("zipstream: entry exceeds size limit")

// Cursor walks the entries of an archive in stored order.
type Cursor struct {
	zr      *zip.Reader
	next    int
	maxSize uint64
}

// Open returns a cursor over data. maxSize limits the uncompressed size of
// any single entry read through the cursor (0 for no limit).
func Open(data []byte, maxSize uint64) (*Cursor, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return &Cursor{zr: zr, maxSize: maxSize}, nil
}

// Len returns the number of entries in the archive.
func (c *Cursor) Len() int {
	return len(c.zr.File)
}

// Next returns the next entry, or io.EOF when the archive is exhausted.
func (c *Cursor) Next() (*Entry, error) {
	if c.next >= len(c.zr.File) {
		return nil, io.EOF
	}
	f := c.zr.File[c.next]
	c.next++
	return &Entry{
		Name:    f.Name,
		IsDir:   strings.HasSuffix(f.Name, "/") || f.FileInfo().IsDir(),
		file:    f,
		maxSize: c.maxSize,
	}, nil
}

// Manifest returns the raw bytes of META-INF/MANIFEST.MF, if present.
// It does not move the cursor.
func (c *Cursor) Manifest() ([]byte, bool, error) {
	for _, f := range c.zr.File {
		if strings.EqualFold(f.Name, ManifestName) {
			e := &Entry{Name: f.Name, file: f, maxSize: c.maxSize}
			data, err := e.ReadAll()
			if err != nil {
				return nil, false, err
			}
			return data, true, nil
		}
	}
	return nil, false, nil
}

// Entry is one named unit of the archive.
type Entry struct {
	Name  string
	IsDir bool

	file    *zip.File
	maxSize uint64
}

// Size returns the declared uncompressed size of the entry.
func (e *Entry) Size() uint64 {
	return e.file.UncompressedSize64
}

// ReadAll reads and returns the full uncompressed content of the entry.
// The returned slice is owned by the caller.
func (e *Entry) ReadAll() ([]byte, error) {
	if e.maxSize > 0 && e.file.UncompressedSize64 > e.maxSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrEntryTooLarge, e.file.UncompressedSize64, e.maxSize)
	}
	rc, err := e.file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var r io.Reader = rc
	if e.maxSize > 0 {
		// Declared sizes can lie; cap what we actually read.
		r = io.LimitReader(rc, int64(e.maxSize)+1) //nolint:gosec // limit is a caller-provided bound
	}
	var buf bytes.Buffer
	if e.file.UncompressedSize64 > 0 && e.file.UncompressedSize64 < 1<<30 {
		buf.Grow(int(e.file.UncompressedSize64))
	}
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}
	if e.maxSize > 0 && uint64(buf.Len()) > e.maxSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrEntryTooLarge, e.maxSize)
	}
	return buf.Bytes(), nil
}
