package jarscan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Source is a named byte source for an archive.
type Source interface {
	// Name is the display name used for the archive.
	Name() string

	// Open returns a reader over the archive bytes. The caller closes it.
	Open() (io.ReadCloser, error)
}

// FileSource returns a Source reading the file at path. Its name is the
// base name of path.
func FileSource(path string) Source {
	return fileSource{path: path}
}

type fileSource struct {
	path string
}

func (s fileSource) Name() string { return filepath.Base(s.path) }

func (s fileSource) Open() (io.ReadCloser, error) {
	if err := checkFile(s.path); err != nil {
		return nil, err
	}
	return os.Open(s.path)
}

// BytesSource returns a Source over an in-memory buffer.
func BytesSource(name string, data []byte) Source {
	return bytesSource{name: name, data: data}
}

type bytesSource struct {
	name string
	data []byte
}

func (s bytesSource) Name() string { return s.name }

func (s bytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

// checkFile verifies path names an existing regular file.
func checkFile(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidArgument)
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrNotFound, path)
	}
	return nil
}

// readSource drains a source into memory.
func readSource(src Source) (string, []byte, error) {
	if src == nil {
		return "", nil, fmt.Errorf("%w: nil source", ErrInvalidArgument)
	}
	rc, err := src.Open()
	if err != nil {
		return "", nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", src.Name(), err)
	}
	return src.Name(), data, nil
}
