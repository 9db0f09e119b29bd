package jarscan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/singleflight"

	"github.com/meigma/jarscan/cache"
	"github.com/meigma/jarscan/internal/manifest"
	"github.com/meigma/jarscan/internal/zipstream"
)

// JarLoader loads JAR files, including JAR files nested inside them.
//
// Loading is sequential: a single archive's entries are read in stored
// order and nested archives are loaded recursively, depth first. A
// JarLoader holds no per-load state and is safe for concurrent use.
type JarLoader struct {
	classDecoder  ClassDecoder
	moduleDecoder ModuleDecoder
	normalizer    Normalizer
	digester      Digester
	maxEntrySize  uint64
	cache         cache.Cache
	flight        singleflight.Group
	logger        *slog.Logger
}

// NewJarLoader creates a JarLoader with the given options.
func NewJarLoader(opts ...JarOption) *JarLoader {
	l := &JarLoader{
		classDecoder:  NewClassDecoder(DefaultClassLoader),
		moduleDecoder: NewModuleDecoder(),
		normalizer:    identity{},
		digester:      SHA256Digester,
		maxEntrySize:  DefaultMaxEntrySize,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// log returns the logger, falling back to a discard logger if nil.
func (l *JarLoader) log() *slog.Logger {
	if l.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l.logger
}

// LoadFile loads the JAR file at path. The archive is named after the base
// name of path; the name is not required to end in ".jar".
func (l *JarLoader) LoadFile(ctx context.Context, path string) (*Result, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided by design
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, filepath.Base(path), data)
}

// LoadSource loads the JAR file read from src.
func (l *JarLoader) LoadSource(ctx context.Context, src Source) (*Result, error) {
	name, data, err := readSource(src)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, name, data)
}

// Load loads the JAR file held in data under the display name name.
//
// The result holds one record per archive: records for nested archives
// come first, in the order they were found, and the record for data itself
// is last. Any failure to open the archive or to read or decode one of its
// class files aborts the whole load; no partial result is returned.
func (l *JarLoader) Load(ctx context.Context, name string, data []byte) (*Result, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty archive name", ErrInvalidArgument)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: nil archive data", ErrInvalidArgument)
	}

	s := &session{log: l.log().With("session", uuid.NewString())}
	if err := l.load(ctx, s, name, data); err != nil {
		return nil, err
	}
	return &Result{Archives: s.records, Problems: s.problems}, nil
}

// session is the output of one top-level Load call, threaded through the
// recursion.
type session struct {
	log      *slog.Logger
	records  []ArchiveRecord
	problems []Problem
}

func (s *session) report(p Problem) {
	s.log.Warn("load problem", "archive", p.Archive, "entry", p.Entry, "error", p.Err)
	s.problems = append(s.problems, p)
}

func (l *JarLoader) load(ctx context.Context, s *session, name string, data []byte) error {
	cur, err := zipstream.Open(data, l.maxEntrySize)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrArchive, name, err)
	}
	multiRelease, err := isMultiRelease(cur)
	if err != nil {
		return fmt.Errorf("%w: %s: %s: %w", ErrArchive, name, zipstream.ManifestName, err)
	}

	var c *contents
	var d digest.Digest
	if l.cache != nil {
		d = l.digester.Digest(data)
		if c, err = l.cachedContents(ctx, name, data, d, multiRelease); err != nil {
			return err
		}
		c = l.relabel(c)
		// Contents came from the cache or a separate decode pass; this pass
		// only descends into nested archives.
		if err := l.walk(ctx, s, name, cur, multiRelease, nil); err != nil {
			return err
		}
	} else {
		b := newBuilder()
		if err := l.walk(ctx, s, name, cur, multiRelease, b); err != nil {
			return err
		}
		c = b.contents()
		d = l.digester.Digest(data)
	}

	l.finish(s, name, int64(len(data)), d, c)
	return nil
}

// walk drains the cursor. With a non-nil builder, class, module, resource
// and release entries are decoded into it. With a non-nil session, nested
// archives are loaded recursively and their records appended to it.
//
//nolint:gocognit // one switch arm per entry disposition
func (l *JarLoader) walk(ctx context.Context, s *session, name string, cur *zipstream.Cursor, multiRelease bool, b *builder) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		e, err := cur.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrArchive, name, err)
		}
		if e.IsDir {
			continue
		}

		switch Classify(e.Name, multiRelease) {
		case Skip, Ignore:
		case VersionMarker:
			if b != nil {
				b.addRelease(e.Name)
			}
		case Module:
			if b == nil {
				continue
			}
			data, err := readEntry(name, e)
			if err != nil {
				return err
			}
			m, err := l.moduleDecoder.DecodeModule(data)
			if err != nil {
				return fmt.Errorf("%w: %s: %s: %w", ErrArchive, name, e.Name, err)
			}
			b.module = m
		case Class:
			if b == nil {
				continue
			}
			data, err := readEntry(name, e)
			if err != nil {
				return err
			}
			rec, err := l.classDecoder.DecodeClass(data)
			if err != nil {
				return fmt.Errorf("%w: %s: %s: %w", ErrArchive, name, e.Name, err)
			}
			if rec == nil {
				return fmt.Errorf("%w: %s: %s: decoder returned no class", ErrArchive, name, e.Name)
			}
			b.classes = append(b.classes, *rec)
		case Nested:
			if s == nil {
				continue
			}
			data, err := readEntry(name, e)
			if err != nil {
				return err
			}
			if err := l.load(ctx, s, nestedName(name, e.Name), data); err != nil {
				return err
			}
		case Resource:
			if b != nil {
				b.resources = append(b.resources, ResourceRecord{Name: e.Name})
			}
		}
	}
}

// finish names, stamps and appends the record for one archive.
func (l *JarLoader) finish(s *session, name string, size int64, d digest.Digest, c *contents) {
	final := l.normalizer.Normalize(name, d)

	// Contents may be shared with concurrent loads of the same bytes, so
	// stamp copies.
	classes := make([]ClassRecord, len(c.Classes))
	for i, cls := range c.Classes {
		cls.ClassLoader = fmt.Sprintf(classLoaderFormat, cls.ClassLoader, final)
		classes[i] = cls
	}

	for _, entry := range c.BadReleases {
		_, err := ReleaseVersion(entry)
		if err == nil {
			err = ErrReleaseVersion
		}
		s.report(Problem{Archive: final, Entry: entry, Err: err})
	}

	s.records = append(s.records, ArchiveRecord{
		Name:      final,
		Size:      size,
		Digest:    d,
		Releases:  c.Releases,
		Module:    c.Module,
		Classes:   classes,
		Resources: c.Resources,
	})
	s.log.Debug("loaded archive",
		"archive", final,
		"digest", d,
		"classes", len(classes),
		"resources", len(c.Resources),
		"releases", c.Releases,
	)
}

// readEntry reads the full content of e, wrapping failures with the
// archive and entry name.
func readEntry(archive string, e *zipstream.Entry) ([]byte, error) {
	data, err := e.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: unable to read entry %s: %w", ErrArchive, archive, e.Name, err)
	}
	return data, nil
}

// isMultiRelease reports whether the archive's manifest declares
// "Multi-Release: true". The value comparison is case-sensitive.
func isMultiRelease(cur *zipstream.Cursor) (bool, error) {
	raw, ok, err := cur.Manifest()
	if err != nil || !ok {
		return false, err
	}
	attrs, err := manifest.Parse(raw)
	if err != nil {
		return false, err
	}
	v, ok := attrs.Get("Multi-Release")
	return ok && v == "true", nil
}
