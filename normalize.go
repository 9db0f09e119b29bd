package jarscan

import "github.com/opencontainers/go-digest"

// Normalizer rewrites the display name of an archive once its content
// digest is known. It can be used to give archives a canonical name (for
// example from an artifact repository lookup) or to disambiguate archives
// that share a file name but differ in content.
// Implementations must be safe for concurrent use.
type Normalizer interface {
	Normalize(name string, d digest.Digest) string
}

// NormalizerFunc adapts a function to Normalizer.
type NormalizerFunc func(name string, d digest.Digest) string

// Normalize calls f(name, d).
func (f NormalizerFunc) Normalize(name string, d digest.Digest) string {
	return f(name, d)
}

// identity is used when no normalizer is configured.
type identity struct{}

func (identity) Normalize(name string, _ digest.Digest) string {
	return name
}
