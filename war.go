package jarscan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/meigma/jarscan/internal/zipstream"
)

// WarLoader loads the library archives of a web archive (WAR).
//
// The web archive itself is scanned sequentially. Every WEB-INF/lib/*.jar
// entry is read on the scanning goroutine and then loaded by a JarLoader on
// a bounded pool of workers. Loose WEB-INF/classes/ entries produce no
// record. A WarLoader is safe for concurrent use.
type WarLoader struct {
	jar     *JarLoader
	workers int
	timeout time.Duration
	policy  FailurePolicy
	logger  *slog.Logger
}

// NewWarLoader creates a WarLoader that loads libraries with jar.
// A nil jar uses NewJarLoader().
func NewWarLoader(jar *JarLoader, opts ...WarOption) *WarLoader {
	if jar == nil {
		jar = NewJarLoader()
	}
	w := &WarLoader{jar: jar}
	for _, opt := range opts {
		opt(w)
	}
	if w.workers <= 0 {
		w.workers = runtime.NumCPU()
	}
	if w.timeout <= 0 {
		w.timeout = DefaultWarTimeout
	}
	return w
}

// log returns the logger, falling back to a discard logger if nil.
func (w *WarLoader) log() *slog.Logger {
	if w.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return w.logger
}

// LoadFile loads the web archive at path.
func (w *WarLoader) LoadFile(ctx context.Context, path string) (*Result, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided by design
	if err != nil {
		return nil, err
	}
	return w.Load(ctx, data)
}

// LoadSource loads the web archive read from src.
func (w *WarLoader) LoadSource(ctx context.Context, src Source) (*Result, error) {
	_, data, err := readSource(src)
	if err != nil {
		return nil, err
	}
	return w.Load(ctx, data)
}

// LoadReader loads a web archive streamed from r. The archive is buffered
// in memory.
func (w *WarLoader) LoadReader(ctx context.Context, r io.Reader) (*Result, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil reader", ErrInvalidArgument)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return w.Load(ctx, data)
}

// Load loads every library archive in the web archive held in data.
//
// Records are sorted by case-insensitive display name. Libraries are named
// by their base file name; archives nested inside them follow the usual
// "lib.jar!/entry" convention.
//
// Under the Lenient policy, a library that fails to load is reported in
// Result.Problems and the remaining libraries are still returned. If the
// timeout elapses, Load returns the libraries that completed and reports
// ErrTimeout as a problem. Cancellation of unfinished libraries is best
// effort: their goroutines may keep running until their current entry is
// decoded, but their records are never added to a result that has been
// returned. Each library's records are published all together or not at
// all.
func (w *WarLoader) Load(ctx context.Context, data []byte) (*Result, error) {
	if data == nil {
		return nil, fmt.Errorf("%w: nil archive data", ErrInvalidArgument)
	}
	cur, err := zipstream.Open(data, w.jar.maxEntrySize)
	if err != nil {
		return nil, fmt.Errorf("%w: open web archive: %w", ErrArchive, err)
	}

	log := w.log().With("session", uuid.NewString())
	start := time.Now()

	waitCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	g, taskCtx := errgroup.WithContext(waitCtx)
	slots := semaphore.NewWeighted(int64(w.workers))
	col := &collector{}

	complete, scanErr := w.scan(taskCtx, log, cur, g, slots, col)
	if scanErr != nil {
		// The web archive itself is broken; abandon running libraries.
		cancel()
		col.close()
		return nil, scanErr
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	var waitErr error
	select {
	case waitErr = <-done:
	case <-waitCtx.Done():
		select {
		case waitErr = <-done:
		default:
			waitErr = waitCtx.Err()
		}
	}
	records, problems := col.close()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	// A library failure under Strict cancels taskCtx with the failure as
	// its cause, even if a hung library kept Wait from returning it.
	if cause := context.Cause(taskCtx); w.policy == Strict && cause != nil && !isContextErr(cause) {
		return nil, cause
	}

	timedOut := errors.Is(waitErr, context.DeadlineExceeded) ||
		(!complete && errors.Is(waitCtx.Err(), context.DeadlineExceeded))
	switch {
	case timedOut:
		timeoutErr := fmt.Errorf("%w after %s", ErrTimeout, w.timeout)
		if w.policy == Strict {
			return nil, timeoutErr
		}
		log.Warn("timed out waiting for libraries", "timeout", w.timeout, "completed", len(records))
		problems = append(problems, Problem{Err: timeoutErr})
	case waitErr != nil:
		return nil, waitErr
	}

	SortArchives(records)
	log.Debug("loaded web archive",
		"archives", len(records),
		"problems", len(problems),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return &Result{Archives: records, Problems: problems}, nil
}

// scan walks the web archive and submits one task per library. It stops
// early, reporting complete = false, when ctx is cancelled.
func (w *WarLoader) scan(ctx context.Context, log *slog.Logger, cur *zipstream.Cursor, g *errgroup.Group, slots *semaphore.Weighted, col *collector) (complete bool, err error) {
	for {
		if ctx.Err() != nil {
			return false, nil
		}
		e, err := cur.Next()
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		if err != nil {
			return false, fmt.Errorf("%w: web archive: %w", ErrArchive, err)
		}
		if e.IsDir {
			continue
		}

		switch {
		case isWebLibrary(e.Name):
			name := path.Base(e.Name)
			// The cursor is not shareable, so bytes are read here and
			// handed to the task.
			data, err := readEntry("web archive", e)
			if err != nil {
				return false, err
			}
			if err := slots.Acquire(ctx, 1); err != nil {
				return false, nil
			}
			g.Go(func() error {
				defer slots.Release(1)
				return w.loadLibrary(ctx, log, col, name, data)
			})
		case strings.HasPrefix(e.Name, webClassesPrefix):
			log.Debug("skipping loose class entry", "entry", e.Name)
		}
	}
}

// loadLibrary loads one library and publishes its records.
func (w *WarLoader) loadLibrary(ctx context.Context, log *slog.Logger, col *collector, name string, data []byte) error {
	res, err := w.jar.Load(ctx, name, data)
	if err != nil {
		if ctx.Err() != nil {
			// Cancelled; Load reports the cause.
			return nil
		}
		if w.policy == Strict {
			return fmt.Errorf("load %s: %w", name, err)
		}
		log.Warn("library failed to load", "library", name, "error", err)
		col.report(Problem{Archive: name, Err: err})
		return nil
	}
	if !col.publish(res.Archives, res.Problems) {
		log.Debug("discarding late library result", "library", name)
	}
	return nil
}

// collector is the result set shared by library tasks.
type collector struct {
	mu       sync.Mutex
	closed   bool
	records  []ArchiveRecord
	problems []Problem
}

// publish appends one library's records and problems together. It returns
// false, adding nothing, once the collector is closed.
func (c *collector) publish(records []ArchiveRecord, problems []Problem) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.records = append(c.records, records...)
	c.problems = append(c.problems, problems...)
	return true
}

func (c *collector) report(p Problem) bool {
	return c.publish(nil, []Problem{p})
}

// close stops further publication and returns copies of the collected
// records and problems.
func (c *collector) close() ([]ArchiveRecord, []Problem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return append([]ArchiveRecord(nil), c.records...), append([]Problem(nil), c.problems...)
}

// isContextErr reports whether err is a plain cancellation or deadline.
func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
