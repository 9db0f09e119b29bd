package jarscan

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/jarscan/classfile"
)

// ArchiveRecord is the inventory of one loaded JAR-like archive.
//
// Records are assembled once, after the archive and every archive nested
// inside it has been scanned, and must be treated as immutable. Nested
// archives are separate records in the same result; containment is only
// visible through the display name ("outer.jar!/lib/inner.jar").
type ArchiveRecord struct {
	// Name is the display name, after normalization.
	Name string

	// Size is the length in bytes of the raw archive.
	Size int64

	// Digest is the content digest of the raw archive bytes.
	Digest digest.Digest

	// Releases holds the multi-release versions found under
	// META-INF/versions/, sorted ascending. Empty for plain archives.
	Releases []int

	// Module is the decoded root module-info.class, if any.
	Module *ModuleDescriptor

	// Classes are the class files in entry order, excluding module-info.
	Classes []ClassRecord

	// Resources are the non-class, non-archive entries in entry order.
	Resources []ResourceRecord
}

// MultiRelease reports whether any versioned entries were found.
func (r *ArchiveRecord) MultiRelease() bool {
	return len(r.Releases) > 0
}

// ClassRecord is the decoded form of one class file entry.
type ClassRecord struct {
	// ClassName is the internal class name ("com/example/Foo").
	ClassName    string
	SuperName    string
	Interfaces   []string
	MajorVersion uint16
	MinorVersion uint16
	AccessFlags  uint16
	Fields       []MemberRecord
	Methods      []MemberRecord

	// ClassLoader names the origin of the class. Decoders set an initial
	// label; loaders append " (<archive name>)" when the owning archive
	// record is built.
	ClassLoader string
}

// MemberRecord is a declared field or method.
type MemberRecord = classfile.Member

// ModuleDescriptor is the decoded content of a module-info.class file.
type ModuleDescriptor = classfile.Module

// ResourceRecord is a non-class entry of an archive.
type ResourceRecord struct {
	Name string

	// Checksum is reserved for a per-resource digest and is currently
	// always empty.
	Checksum string
}

// Problem is a non-fatal failure encountered while loading. Problems are
// collected alongside successful records instead of aborting the load.
type Problem struct {
	// Archive is the display name of the archive being loaded.
	Archive string

	// Entry is the offending entry name, if the problem is entry-specific.
	Entry string

	Err error
}

func (p Problem) Error() string {
	switch {
	case p.Archive == "":
		return p.Err.Error()
	case p.Entry == "":
		return fmt.Sprintf("%s: %v", p.Archive, p.Err)
	default:
		return fmt.Sprintf("%s: %s: %v", p.Archive, p.Entry, p.Err)
	}
}

func (p Problem) Unwrap() error {
	return p.Err
}

// Result is the output of a load.
type Result struct {
	Archives []ArchiveRecord
	Problems []Problem
}

// Err joins all problems into a single error, or returns nil.
func (r *Result) Err() error {
	if len(r.Problems) == 0 {
		return nil
	}
	errs := make([]error, len(r.Problems))
	for i, p := range r.Problems {
		errs[i] = p
	}
	return errors.Join(errs...)
}

// Find returns the record with the given display name.
func (r *Result) Find(name string) (ArchiveRecord, bool) {
	for _, a := range r.Archives {
		if a.Name == name {
			return a, true
		}
	}
	return ArchiveRecord{}, false
}

// SortArchives sorts records by case-insensitive display name.
// Names that differ only in case keep a stable, case-sensitive order.
func SortArchives(records []ArchiveRecord) {
	slices.SortStableFunc(records, func(a, b ArchiveRecord) int {
		if c := compareFold(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
}

// compareFold compares strings rune by rune after lower-casing.
func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
