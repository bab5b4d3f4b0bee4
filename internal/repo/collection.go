// Package repo provides the generic in-memory collection backing every
// entity type, with a snapshot-store port for best-effort durability.
package repo

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"sync"

	"github.com/openfleet/harrier/internal/domain"
)

// Options tune a collection's identity and registration behavior.
type Options[T any] struct {
	// Validate runs before registration; a non-nil result rejects the
	// entity without touching the collection.
	Validate func(T) error

	// AllowDuplicateKeys skips the uniqueness check on Register. The
	// rental collection needs this: closed rentals legally share the
	// vehicle-plate key with later rentals of the same vehicle.
	AllowDuplicateKeys bool

	// Active scopes Find and Update to entities for which it returns
	// true. Nil means every entity is active. The rental collection uses
	// this to make "the open rental for this plate" the addressable one.
	Active func(T) bool
}

// Collection is an insertion-ordered in-memory entity collection. Mutations
// are persisted through the snapshot store after they are applied; a failed
// save is logged and retained for inspection but never rolls the mutation
// back and never reaches the mutating caller.
//
// Every operation takes the collection lock. The reference system was
// single-actor and lock-free; the concurrent HTTP front end makes the lock a
// required upgrade, not an optimization.
type Collection[T any] struct {
	mu      sync.RWMutex
	name    string
	keyFn   func(T) string
	opts    Options[T]
	items   []T
	store   domain.Store[T]
	saveErr error
}

// New creates a collection and loads the prior snapshot from the store.
// A missing snapshot is not an error: the collection starts empty. A failing
// load is logged and also starts empty, matching the best-effort durability
// policy of the mutating operations.
func New[T any](ctx context.Context, name string, store domain.Store[T], key func(T) string, opts Options[T]) *Collection[T] {
	c := &Collection[T]{
		name:  name,
		keyFn: key,
		opts:  opts,
		store: store,
	}
	if store != nil {
		items, err := store.Load(ctx)
		if err != nil {
			slog.Warn("snapshot load failed, starting empty",
				"collection", name,
				"error", err,
			)
		} else {
			c.items = items
		}
	}
	return c
}

// Register validates and appends a new entity, then persists the snapshot.
// Returns an error wrapping domain.ErrDuplicate when the key is taken and
// duplicates are not allowed; validation hooks return their own errors.
func (c *Collection[T]) Register(ctx context.Context, item T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.opts.Validate != nil {
		if err := c.opts.Validate(item); err != nil {
			return err
		}
	}

	if !c.opts.AllowDuplicateKeys {
		key := c.keyFn(item)
		for _, existing := range c.items {
			if c.keyFn(existing) == key {
				return fmt.Errorf("%s %q already exists: %w", c.name, key, domain.ErrDuplicate)
			}
		}
	}

	c.items = append(c.items, item)
	c.save(ctx)
	return nil
}

// Update replaces the active entity whose key matches the given one, then
// persists the snapshot. An absent key is a no-op.
func (c *Collection[T]) Update(ctx context.Context, item T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := c.keyFn(item)
	for i, existing := range c.items {
		if c.keyFn(existing) == key && c.active(existing) {
			c.items[i] = item
			c.save(ctx)
			return
		}
	}
}

// Find returns the active entity with the given key.
func (c *Collection[T]) Find(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, item := range c.items {
		if c.keyFn(item) == key && c.active(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// All returns a lazy sequence over the collection in insertion order. The
// sequence is restartable: each traversal re-reads the current collection
// state, not a snapshot from when All was called.
func (c *Collection[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		c.mu.RLock()
		items := make([]T, len(c.items))
		copy(items, c.items)
		c.mu.RUnlock()

		for _, item := range items {
			if !yield(item) {
				return
			}
		}
	}
}

// Filter returns the entities matching the predicate, in insertion order.
func (c *Collection[T]) Filter(pred func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []T
	for _, item := range c.items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

// Page returns up to size entities for the 1-based page number, skipping
// (page-1)*size entities. Exhausted pages return fewer entities, possibly
// none; that is never an error. Out-of-range arguments are clamped.
func (c *Collection[T]) Page(page, size int) []T {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 10
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	start := (page - 1) * size
	if start >= len(c.items) {
		return nil
	}
	end := min(start+size, len(c.items))

	out := make([]T, end-start)
	copy(out, c.items[start:end])
	return out
}

// Count returns the total number of entities.
func (c *Collection[T]) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// GroupCount maps each derived key to its occurrence count. The result
// carries no ordering; callers sort for display.
func (c *Collection[T]) GroupCount(key func(T) string) map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	counts := make(map[string]int)
	for _, item := range c.items {
		counts[key(item)]++
	}
	return counts
}

// SaveErr returns the error from the most recent snapshot save, or nil when
// it succeeded. Mutating callers never see save failures directly; this is
// the observable warning they can check.
func (c *Collection[T]) SaveErr() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.saveErr
}

func (c *Collection[T]) active(item T) bool {
	return c.opts.Active == nil || c.opts.Active(item)
}

// save persists the full snapshot. Called with the write lock held.
func (c *Collection[T]) save(ctx context.Context) {
	if c.store == nil {
		return
	}

	snapshot := make([]T, len(c.items))
	copy(snapshot, c.items)

	if err := c.store.Save(ctx, snapshot); err != nil {
		c.saveErr = fmt.Errorf("%w: save %s snapshot: %v", domain.ErrStorage, c.name, err)
		slog.Warn("snapshot save failed, in-memory state kept",
			"collection", c.name,
			"error", err,
		)
		return
	}
	c.saveErr = nil
}
