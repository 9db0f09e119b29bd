package jarscan

import (
	"fmt"
	"strconv"
	"strings"
)

// Entry-name conventions.
const (
	metaInfPrefix     = "META-INF/"
	versionsPrefix    = "META-INF/versions/"
	moduleInfoName    = "module-info.class"
	classSuffix       = ".class"
	archiveSuffix     = ".jar"
	webLibPrefix      = "WEB-INF/lib/"
	webClassesPrefix  = "WEB-INF/classes/"
	nestedSeparator   = "!/"
	classLoaderFormat = "%s (%s)"
)

// Disposition is the action a loader takes for an archive entry.
type Disposition int

const (
	// Skip marks directory entries.
	Skip Disposition = iota
	// VersionMarker marks entries under META-INF/versions/ in a
	// multi-release archive. Only the release number is recorded.
	VersionMarker
	// Ignore marks other META-INF/ metadata.
	Ignore
	// Class marks class files.
	Class
	// Module marks the root module-info.class.
	Module
	// Nested marks archives nested inside the archive.
	Nested
	// Resource marks everything else.
	Resource
)

var dispositionNames = [...]string{
	Skip:          "skip",
	VersionMarker: "version-marker",
	Ignore:        "ignore",
	Class:         "class",
	Module:        "module",
	Nested:        "nested",
	Resource:      "resource",
}

func (d Disposition) String() string {
	if d < 0 || int(d) >= len(dispositionNames) {
		return "Disposition(" + strconv.Itoa(int(d)) + ")"
	}
	return dispositionNames[d]
}

// Classify decides how an entry is handled from its name alone. It is
// case-sensitive and must run before any entry bytes are read.
func Classify(name string, multiRelease bool) Disposition {
	switch {
	case strings.HasSuffix(name, "/"):
		return Skip
	case multiRelease && strings.HasPrefix(name, versionsPrefix):
		return VersionMarker
	case strings.HasPrefix(name, metaInfPrefix):
		return Ignore
	case name == moduleInfoName:
		return Module
	case strings.HasSuffix(name, classSuffix):
		return Class
	case strings.HasSuffix(name, archiveSuffix):
		return Nested
	default:
		return Resource
	}
}

// ReleaseVersion extracts the release number from a multi-release entry
// name such as "META-INF/versions/11/com/example/Foo.class".
func ReleaseVersion(name string) (int, error) {
	rest, ok := strings.CutPrefix(name, versionsPrefix)
	if !ok {
		return 0, fmt.Errorf("%w: %q is not under %s", ErrReleaseVersion, name, versionsPrefix)
	}
	segment, _, ok := strings.Cut(rest, "/")
	if !ok {
		return 0, fmt.Errorf("%w: %q has no version directory", ErrReleaseVersion, name)
	}
	release, err := strconv.Atoi(segment)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrReleaseVersion, segment, err)
	}
	if release < 0 {
		return 0, fmt.Errorf("%w: %d is negative", ErrReleaseVersion, release)
	}
	return release, nil
}

// isWebLibrary reports whether a web-archive entry is a library archive.
func isWebLibrary(name string) bool {
	return strings.HasPrefix(name, webLibPrefix) && strings.HasSuffix(name, archiveSuffix)
}

// nestedName builds the display name of an archive nested in parent.
func nestedName(parent, entry string) string {
	return parent + nestedSeparator + entry
}
