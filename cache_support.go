package jarscan

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/opencontainers/go-digest"

	"github.com/meigma/jarscan/internal/zipstream"
)

// contentsVersion is bumped whenever the encoded layout of contents changes.
const contentsVersion = 1

// contents is the name-independent part of an archive record: everything
// that is a pure function of the archive bytes.
type contents struct {
	Version     int               `cbor:"1,keyasint"`
	Releases    []int             `cbor:"2,keyasint,omitempty"`
	Module      *ModuleDescriptor `cbor:"3,keyasint,omitempty"`
	Classes     []ClassRecord     `cbor:"4,keyasint,omitempty"`
	Resources   []ResourceRecord  `cbor:"5,keyasint,omitempty"`
	BadReleases []string          `cbor:"6,keyasint,omitempty"`
}

// builder accumulates contents during a single walk.
type builder struct {
	releases    map[int]struct{}
	module      *ModuleDescriptor
	classes     []ClassRecord
	resources   []ResourceRecord
	badReleases []string
}

func newBuilder() *builder {
	return &builder{releases: make(map[int]struct{})}
}

// addRelease records the release number of a versioned entry, or notes the
// entry as unparsable.
func (b *builder) addRelease(entry string) {
	release, err := ReleaseVersion(entry)
	if err != nil {
		b.badReleases = append(b.badReleases, entry)
		return
	}
	b.releases[release] = struct{}{}
}

func (b *builder) contents() *contents {
	var releases []int
	for r := range b.releases {
		releases = append(releases, r)
	}
	slices.Sort(releases)
	return &contents{
		Version:     contentsVersion,
		Releases:    releases,
		Module:      b.module,
		Classes:     b.classes,
		Resources:   b.resources,
		BadReleases: b.badReleases,
	}
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode

	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
	codecOnce   sync.Once
	codecErr    error
)

func initCodec() error {
	codecOnce.Do(func() {
		if encMode, codecErr = cbor.CoreDetEncOptions().EncMode(); codecErr != nil {
			return
		}
		if decMode, codecErr = (cbor.DecOptions{}).DecMode(); codecErr != nil {
			return
		}
		if zstdEncoder, codecErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault)); codecErr != nil {
			return
		}
		zstdDecoder, codecErr = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	})
	return codecErr
}

// encodeContents serializes contents as zstd-compressed CBOR.
func encodeContents(c *contents) ([]byte, error) {
	if err := initCodec(); err != nil {
		return nil, err
	}
	raw, err := encMode.Marshal(c)
	if err != nil {
		return nil, err
	}
	return zstdEncoder.EncodeAll(raw, nil), nil
}

// decodeContents is the inverse of encodeContents.
func decodeContents(data []byte) (*contents, error) {
	if err := initCodec(); err != nil {
		return nil, err
	}
	raw, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, err
	}
	var c contents
	if err := decMode.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	if c.Version != contentsVersion {
		return nil, fmt.Errorf("cached contents version %d, want %d", c.Version, contentsVersion)
	}
	return &c, nil
}

// maxSharedDecodeAttempts bounds how often a caller redoes a shared decode
// that ended with a context error other than its own.
const maxSharedDecodeAttempts = 4

// cachedContents returns the contents for d, decoding the archive only if
// the cache has no usable entry. Concurrent calls for the same digest share
// one decode.
//
// The shared decode runs under the context of whichever caller started it.
// If that context ends while ctx is still live, the decode is retried for
// this caller, up to maxSharedDecodeAttempts times in all.
func (l *JarLoader) cachedContents(ctx context.Context, name string, data []byte, d digest.Digest, multiRelease bool) (*contents, error) {
	for attempt := 1; ; attempt++ {
		v, err, _ := l.flight.Do(d.String(), func() (any, error) {
			return l.fillContents(ctx, name, data, d, multiRelease)
		})
		if err != nil {
			if isContextErr(err) && ctx.Err() == nil && attempt < maxSharedDecodeAttempts {
				l.log().Debug("retrying shared decode cancelled by another caller", "archive", name, "digest", d)
				continue
			}
			return nil, err
		}
		c, ok := v.(*contents)
		if !ok {
			return nil, fmt.Errorf("%w: %s: unexpected cached value", ErrArchive, name)
		}
		return c, nil
	}
}

// fillContents reads the cache entry for d, or decodes the archive and
// stores the result.
func (l *JarLoader) fillContents(ctx context.Context, name string, data []byte, d digest.Digest, multiRelease bool) (*contents, error) {
	if raw, ok := l.cache.Get(d); ok {
		c, err := decodeContents(raw)
		if err == nil {
			l.log().Debug("inventory cache hit", "archive", name, "digest", d)
			return c, nil
		}
		l.log().Warn("discarding unreadable cache entry", "digest", d, "error", err)
		_ = l.cache.Delete(d) //nolint:errcheck // best-effort cleanup
	}

	cur, err := zipstream.Open(data, l.maxEntrySize)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrArchive, name, err)
	}
	b := newBuilder()
	if err := l.walk(ctx, nil, name, cur, multiRelease, b); err != nil {
		return nil, err
	}
	c := b.contents()

	raw, err := encodeContents(c)
	if err != nil {
		l.log().Warn("encode cache entry", "digest", d, "error", err)
		return c, nil
	}
	if err := l.cache.Put(d, raw); err != nil {
		l.log().Warn("store cache entry", "digest", d, "error", err)
	}
	return c, nil
}

// relabel returns c with every class labelled by the configured decoder,
// when the decoder implements Labeler. Cached contents carry the label of
// the decoder that filled the cache, which need not be this one.
func (l *JarLoader) relabel(c *contents) *contents {
	lb, ok := l.classDecoder.(Labeler)
	if !ok {
		return c
	}
	label := lb.ClassLoader()
	out := *c
	out.Classes = make([]ClassRecord, len(c.Classes))
	for i, cls := range c.Classes {
		cls.ClassLoader = label
		out.Classes[i] = cls
	}
	return &out
}
