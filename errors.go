package jarscan

import "errors"

var (
	// ErrInvalidArgument is returned when a required input is missing.
	// It is reported before any I/O is attempted.
	ErrInvalidArgument = errors.New("jarscan: invalid argument")

	// ErrNotFound is returned when an input path does not exist or is not
	// a regular file.
	ErrNotFound = errors.New("jarscan: not found")

	// ErrArchive is returned when an archive cannot be opened, or when one
	// of its entries cannot be read or decoded. The wrapping error names
	// the archive and entry.
	ErrArchive = errors.New("jarscan: archive error")

	// ErrReleaseVersion is reported as a Problem when the release number
	// of a META-INF/versions/ entry cannot be parsed.
	ErrReleaseVersion = errors.New("jarscan: invalid release version")

	// ErrTimeout is returned (or reported as a Problem) when nested library
	// loads do not finish within the configured timeout.
	ErrTimeout = errors.New("jarscan: timed out waiting for nested archives")
)
