package jarscan

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/meigma/jarscan/internal/testutil"
)

// errBadClass is returned by nameDecoder for class bytes starting with "bad".
var errBadClass = errors.New("bad class")

// nameDecoder is a ClassDecoder that uses the entry bytes as the class name.
// Bytes starting with "bad" fail to decode. It counts calls and labels
// classes with label, or DefaultClassLoader if label is empty.
type nameDecoder struct {
	label string
	calls atomic.Int64
}

func (d *nameDecoder) ClassLoader() string {
	if d.label == "" {
		return DefaultClassLoader
	}
	return d.label
}

func (d *nameDecoder) DecodeClass(data []byte) (*ClassRecord, error) {
	d.calls.Add(1)
	name := string(data)
	if strings.HasPrefix(name, "bad") {
		return nil, errBadClass
	}
	return &ClassRecord{ClassName: name, ClassLoader: d.ClassLoader()}, nil
}

// gateDecoder behaves like nameDecoder, but the first decode of class bytes
// "block" closes entered and then waits for release.
type gateDecoder struct {
	nameDecoder
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGateDecoder() *gateDecoder {
	return &gateDecoder{entered: make(chan struct{}), release: make(chan struct{})}
}

func (d *gateDecoder) DecodeClass(data []byte) (*ClassRecord, error) {
	if string(data) == "block" {
		d.once.Do(func() { close(d.entered) })
		<-d.release
	}
	return d.nameDecoder.DecodeClass(data)
}

// blockingDecoder behaves like nameDecoder but blocks on class bytes
// "block" until release is closed.
type blockingDecoder struct {
	nameDecoder
	release chan struct{}
}

func newBlockingDecoder(t *testing.T) *blockingDecoder {
	t.Helper()
	d := &blockingDecoder{release: make(chan struct{})}
	t.Cleanup(func() { close(d.release) })
	return d
}

func (d *blockingDecoder) DecodeClass(data []byte) (*ClassRecord, error) {
	if string(data) == "block" {
		<-d.release
	}
	return d.nameDecoder.DecodeClass(data)
}

// class returns a zip entry whose bytes nameDecoder turns into className.
func class(entry, className string) testutil.ZipEntry {
	return testutil.ZipEntry{Name: entry, Data: []byte(className)}
}

// file returns a resource entry.
func file(name, content string) testutil.ZipEntry {
	return testutil.ZipEntry{Name: name, Data: []byte(content)}
}

// dir returns a directory entry.
func dir(name string) testutil.ZipEntry {
	return testutil.ZipEntry{Name: name}
}

// nested returns an entry holding an archive.
func nested(name string, data []byte) testutil.ZipEntry {
	return testutil.ZipEntry{Name: name, Data: data}
}

func classNames(r ArchiveRecord) []string {
	names := make([]string, len(r.Classes))
	for i, c := range r.Classes {
		names[i] = c.ClassName
	}
	return names
}

func resourceNames(r ArchiveRecord) []string {
	names := make([]string, len(r.Resources))
	for i, res := range r.Resources {
		names[i] = res.Name
	}
	return names
}

func archiveNames(res *Result) []string {
	names := make([]string, len(res.Archives))
	for i, a := range res.Archives {
		names[i] = a.Name
	}
	return names
}
