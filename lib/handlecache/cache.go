// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

package handlecache

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hondana-project/hondana/lib/archive"
	"github.com/hondana-project/hondana/lib/clock"
)

// Config configures a Cache. All fields are fixed at construction.
type Config struct {
	// MaxEntries is the maximum number of open archive handles the
	// cache holds. Inserting beyond the limit evicts the
	// least-recently-accessed handle first. Required, must be > 0.
	MaxEntries int

	// SweepInterval is how often the background sweep checks for idle
	// handles. Zero disables the sweep.
	SweepInterval time.Duration

	// MaxIdle is the idle time after which a handle is closed by the
	// sweep, independent of capacity pressure. This bounds file
	// descriptor usage even under low-churn access patterns. Zero
	// disables idle eviction.
	MaxIdle time.Duration

	// Open opens an archive handle for a path. Defaults to
	// archive.Open. Tests inject a counting opener to assert that
	// concurrent Gets share a single open.
	Open func(path string) (*archive.Handle, error)

	// Clock is the time source for access stamps and the sweep
	// ticker. Defaults to clock.Real().
	Clock clock.Clock

	// Logger is the structured logger. Required.
	Logger *slog.Logger
}

// Cache is a bounded cache of open archive readers, keyed by archive
// path. It is the single owner of every open reader: a handle obtained
// from Get must not be retained past the scope of one request, and
// the cache closes handles on eviction, invalidation, and Clear.
//
// Eviction is least-recently-accessed-first when capacity is exceeded
// on insert. A background sweep closes handles idle longer than
// MaxIdle. Closing is asynchronous relative to the evicting call: the
// map entry is removed synchronously, the underlying close runs in a
// goroutine, and close failures are logged, never propagated — a new
// handle for the same path can be opened immediately after removal.
//
// The cache is safe for concurrent Get, Invalidate, and sweep. A Get
// that races with an eviction of the same path never observes a
// handle that is being closed; the loser of the race opens fresh.
type Cache struct {
	config Config
	open   func(path string) (*archive.Handle, error)
	clock  clock.Clock
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry

	// mutating holds a channel per archive path currently owned by a
	// mutation (see BeginMutation). Get blocks on the channel until
	// the mutation releases the path, so no reader can cache a handle
	// against a file that is about to be rewritten.
	mutating map[string]chan struct{}

	stop      chan struct{}
	sweepDone chan struct{}
	closeOnce sync.Once
}

// entry tracks one cached handle, including one still being opened.
type entry struct {
	// ready is closed once the open attempt completes (handle or err
	// is then set). Gets that find an in-flight entry wait on it
	// instead of opening a second handle for the same path.
	ready  chan struct{}
	handle *archive.Handle
	err    error

	// lastAccess and evicted are guarded by Cache.mu.
	lastAccess time.Time
	evicted    bool
}

// New creates a Cache and starts its background sweep (when both
// SweepInterval and MaxIdle are set). Call Close on shutdown to stop
// the sweep and release all handles.
func New(config Config) (*Cache, error) {
	if config.MaxEntries <= 0 {
		return nil, fmt.Errorf("handlecache: MaxEntries must be positive, got %d", config.MaxEntries)
	}
	if config.Logger == nil {
		return nil, fmt.Errorf("handlecache: Logger is required")
	}
	if config.Open == nil {
		config.Open = archive.Open
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}

	c := &Cache{
		config:    config,
		open:      config.Open,
		clock:     config.Clock,
		logger:    config.Logger,
		entries:   make(map[string]*entry),
		mutating:  make(map[string]chan struct{}),
		stop:      make(chan struct{}),
		sweepDone: make(chan struct{}),
	}

	if config.SweepInterval > 0 && config.MaxIdle > 0 {
		go c.sweepLoop()
	} else {
		close(c.sweepDone)
	}
	return c, nil
}

// Get returns the cached handle for archivePath, opening and caching
// one on miss. Concurrent Gets for the same path share a single open.
// Every successful Get refreshes the handle's last-access time.
//
// Get blocks while a mutation holds the path (see BeginMutation).
func (c *Cache) Get(archivePath string) (*archive.Handle, error) {
	for {
		c.mu.Lock()

		if gate, held := c.mutating[archivePath]; held {
			c.mu.Unlock()
			<-gate
			continue
		}

		if existing, ok := c.entries[archivePath]; ok {
			c.mu.Unlock()
			<-existing.ready

			c.mu.Lock()
			if existing.err != nil {
				c.mu.Unlock()
				return nil, existing.err
			}
			if existing.evicted || c.entries[archivePath] != existing {
				// Lost a race with eviction or invalidation. The
				// handle is being closed; open fresh.
				c.mu.Unlock()
				continue
			}
			existing.lastAccess = c.clock.Now()
			handle := existing.handle
			c.mu.Unlock()
			return handle, nil
		}

		// Miss: insert a placeholder so concurrent Gets wait on this
		// open, then evict past capacity before doing the open I/O.
		fresh := &entry{
			ready:      make(chan struct{}),
			lastAccess: c.clock.Now(),
		}
		c.entries[archivePath] = fresh
		c.evictOverCapacityLocked(archivePath)
		c.mu.Unlock()

		handle, err := c.open(archivePath)

		c.mu.Lock()
		if err != nil {
			fresh.err = err
			if c.entries[archivePath] == fresh {
				delete(c.entries, archivePath)
			}
			close(fresh.ready)
			c.mu.Unlock()
			return nil, fmt.Errorf("handlecache: opening %s: %w", archivePath, err)
		}
		fresh.handle = handle
		close(fresh.ready)
		if fresh.evicted {
			// Evicted while the open was in flight. The eviction's
			// close goroutine is already waiting on ready and will
			// close this handle; retry so the caller gets a handle
			// the cache still owns.
			c.mu.Unlock()
			continue
		}
		fresh.lastAccess = c.clock.Now()
		c.mu.Unlock()
		return handle, nil
	}
}

// Has reports whether a handle for archivePath is currently cached.
func (c *Cache) Has(archivePath string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[archivePath]
	return ok
}

// Invalidate closes and removes the handle for archivePath, if cached.
// Other entries are unaffected.
func (c *Cache) Invalidate(archivePath string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[archivePath]; ok {
		c.evictLocked(archivePath, e)
	}
}

// Clear closes and removes all cached handles. Runs on process
// shutdown so every file handle is released.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for path, e := range c.entries {
		c.evictLocked(path, e)
	}
}

// Stats holds cache utilization metrics.
type Stats struct {
	// Size is the number of handles currently cached.
	Size int `cbor:"size" json:"size"`
}

// Stats returns current cache utilization metrics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Size: len(c.entries)}
}

// BeginMutation takes exclusive ownership of an archive path for the
// duration of a mutation. The cached handle (if any) is invalidated
// immediately, and Gets for the path block until the returned release
// function runs — so no reader can open and cache the old file while
// it is being rewritten. The release function invalidates once more
// as a final safety measure before unblocking readers.
//
// Concurrent BeginMutation calls for the same path serialize: the
// second waits for the first to release.
func (c *Cache) BeginMutation(archivePath string) (release func()) {
	for {
		c.mu.Lock()
		if gate, held := c.mutating[archivePath]; held {
			c.mu.Unlock()
			<-gate
			continue
		}

		gate := make(chan struct{})
		c.mutating[archivePath] = gate
		if e, ok := c.entries[archivePath]; ok {
			c.evictLocked(archivePath, e)
		}
		c.mu.Unlock()

		return func() {
			c.mu.Lock()
			if e, ok := c.entries[archivePath]; ok {
				c.evictLocked(archivePath, e)
			}
			delete(c.mutating, archivePath)
			close(gate)
			c.mu.Unlock()
		}
	}
}

// Close stops the background sweep and releases all handles. The
// cache must not be used after Close.
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		close(c.stop)
	})
	<-c.sweepDone
	c.Clear()
}

// evictOverCapacityLocked evicts least-recently-accessed entries until
// the cache is within MaxEntries. The entry at keepPath (the one just
// inserted) is never chosen — evicting the insertion it is making room
// for would be self-defeating. Caller holds c.mu.
func (c *Cache) evictOverCapacityLocked(keepPath string) {
	for len(c.entries) > c.config.MaxEntries {
		var oldestPath string
		var oldest *entry
		for path, e := range c.entries {
			if path == keepPath {
				continue
			}
			if oldest == nil || e.lastAccess.Before(oldest.lastAccess) {
				oldestPath, oldest = path, e
			}
		}
		if oldest == nil {
			return
		}
		c.evictLocked(oldestPath, oldest)
	}
}

// evictLocked removes an entry from the map and schedules its close.
// Caller holds c.mu.
func (c *Cache) evictLocked(path string, e *entry) {
	e.evicted = true
	delete(c.entries, path)

	// Fire-and-forget close. The goroutine waits for an in-flight
	// open to finish before closing — the Get that loses this race
	// sees the evicted flag and retries with a fresh open.
	go func() {
		<-e.ready
		if e.handle == nil {
			return
		}
		if err := e.handle.Close(); err != nil {
			c.logger.Warn("failed to close evicted archive handle",
				"path", path,
				"error", err,
			)
		}
	}()
}

// sweepLoop closes idle handles on a fixed interval until Close.
func (c *Cache) sweepLoop() {
	defer close(c.sweepDone)

	ticker := c.clock.NewTicker(c.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweepIdle()
		case <-c.stop:
			return
		}
	}
}

// sweepIdle evicts every handle whose idle time exceeds MaxIdle,
// independent of capacity pressure.
func (c *Cache) sweepIdle() {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	for path, e := range c.entries {
		if now.Sub(e.lastAccess) > c.config.MaxIdle {
			c.evictLocked(path, e)
		}
	}
}
