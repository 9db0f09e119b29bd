package jarscan

import (
	"log/slog"

	"github.com/meigma/jarscan/cache"
)

// DefaultMaxEntrySize limits the uncompressed size of any single entry,
// including nested archives.
const DefaultMaxEntrySize uint64 = 1 << 30 // 1 GiB

// JarOption configures a JarLoader.
type JarOption func(*JarLoader)

// WithClassDecoder sets the decoder used for class file entries.
// Defaults to NewClassDecoder(DefaultClassLoader).
func WithClassDecoder(d ClassDecoder) JarOption {
	return func(l *JarLoader) {
		if d != nil {
			l.classDecoder = d
		}
	}
}

// WithModuleDecoder sets the decoder used for the root module-info.class.
// Defaults to NewModuleDecoder().
func WithModuleDecoder(d ModuleDecoder) JarOption {
	return func(l *JarLoader) {
		if d != nil {
			l.moduleDecoder = d
		}
	}
}

// WithNormalizer sets the display-name normalization policy.
// By default names are used unchanged.
func WithNormalizer(n Normalizer) JarOption {
	return func(l *JarLoader) {
		if n != nil {
			l.normalizer = n
		}
	}
}

// WithDigester sets the content digest algorithm. Defaults to SHA-256.
func WithDigester(d Digester) JarOption {
	return func(l *JarLoader) {
		if d != nil {
			l.digester = d
		}
	}
}

// WithMaxEntrySize limits the uncompressed size of a single entry.
// Set limit to 0 to disable the limit.
func WithMaxEntrySize(limit uint64) JarOption {
	return func(l *JarLoader) {
		l.maxEntrySize = limit
	}
}

// WithCache enables content-addressed caching of decoded archive contents.
//
// On a hit, class and module decoding is skipped; nested archives are still
// opened so that their own records (and names) are produced. Concurrent
// loads of identical bytes are collapsed into a single decode. Cached
// classes are relabelled with the class loader name of the configured
// decoder if it implements Labeler.
func WithCache(c cache.Cache) JarOption {
	return func(l *JarLoader) {
		l.cache = c
	}
}

// WithLogger sets the logger for load diagnostics.
// By default, logging is disabled.
func WithLogger(logger *slog.Logger) JarOption {
	return func(l *JarLoader) {
		l.logger = logger
	}
}
