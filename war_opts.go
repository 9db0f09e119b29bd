package jarscan

import (
	"log/slog"
	"time"
)

// DefaultWarTimeout bounds how long a WarLoader waits for nested library
// loads to finish.
const DefaultWarTimeout = 60 * time.Second

// FailurePolicy controls how a WarLoader handles a library that fails to load.
type FailurePolicy int

const (
	// Lenient records a failed library as a Problem and keeps the records
	// of every library that loaded. A timeout is also reported as a Problem.
	Lenient FailurePolicy = iota

	// Strict cancels the remaining libraries and returns the first failure
	// (or ErrTimeout) as an error.
	Strict
)

func (p FailurePolicy) String() string {
	switch p {
	case Lenient:
		return "lenient"
	case Strict:
		return "strict"
	default:
		return "unknown"
	}
}

// ParseFailurePolicy parses "lenient" or "strict".
func ParseFailurePolicy(s string) (FailurePolicy, bool) {
	switch s {
	case "lenient", "":
		return Lenient, true
	case "strict":
		return Strict, true
	default:
		return Lenient, false
	}
}

// WarOption configures a WarLoader.
type WarOption func(*WarLoader)

// WithWorkers sets the number of libraries loaded in parallel.
// Values <= 0 use runtime.NumCPU().
func WithWorkers(n int) WarOption {
	return func(w *WarLoader) {
		w.workers = n
	}
}

// WithTimeout bounds the wait for library loads. Values <= 0 use
// DefaultWarTimeout.
func WithTimeout(d time.Duration) WarOption {
	return func(w *WarLoader) {
		w.timeout = d
	}
}

// WithFailurePolicy sets how library failures are handled.
// Defaults to Lenient.
func WithFailurePolicy(p FailurePolicy) WarOption {
	return func(w *WarLoader) {
		w.policy = p
	}
}

// WithWarLogger sets the logger for web-archive diagnostics.
// By default, logging is disabled.
func WithWarLogger(logger *slog.Logger) WarOption {
	return func(w *WarLoader) {
		w.logger = logger
	}
}
