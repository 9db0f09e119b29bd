// Package cache provides content-addressed caching of archive inventories.
//
// The cache is an optional enhancement: a loader configured with a cache
// stores the decoded classes, resources, releases and module descriptor
// of every archive it scans, keyed by the archive's content digest. A
// later load of identical bytes, under any name, skips class decoding.
//
// Subpackage disk provides a filesystem-backed implementation.
package cache
