// Package collection provides a generic in-memory collection with named
// inverted indexes.
//
// A Collection owns an append-only ordered list of records and a dynamically
// extensible set of named filters. A filter is a pure projection from a
// record to zero or more keys; for every registered filter the collection
// maintains an inverted index from key to the positions of the records that
// produced it. Filters may be registered before or after records exist: a
// late registration backfills its index over all stored records, so the
// index content is identical either way.
//
// A record may project to several keys under one filter (a badge with
// several historical ids, a user with several past names); each key resolves
// to the same record. Keys that carry no meaningful value (invalid kind,
// NaN floats) are silently skipped per-key without aborting the record's
// insertion under its other keys.
package collection

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrUnknownFilter is returned when querying a filter name that was
	// never registered.
	ErrUnknownFilter = errors.New("unknown filter")

	// ErrDuplicateFilter is returned when registering a filter name twice.
	ErrDuplicateFilter = errors.New("duplicate filter")

	// ErrInvalidFilterName is returned when a filter name is empty or
	// contains whitespace.
	ErrInvalidFilterName = errors.New("invalid filter name")
)

// Projection maps a record to the keys it should be indexed under.
// Projections must be pure and side-effect-free; they are re-evaluated
// when a filter is registered after records already exist.
type Projection[T any] func(item T) []Key

// index is a single inverted index: distinct keys in first-insertion order
// plus postings from stable map key to record positions.
type index struct {
	keys     []Key
	postings map[string][]int
}

func newIndex() *index {
	return &index{postings: make(map[string][]int)}
}

func (ix *index) insert(pos int, keys []Key) {
	for _, k := range keys {
		if !k.Valid() {
			continue
		}
		mk := k.MapKey()
		if _, ok := ix.postings[mk]; !ok {
			ix.keys = append(ix.keys, k)
		}
		ix.postings[mk] = append(ix.postings[mk], pos)
	}
}

// Collection is a generic multi-index record collection.
//
// Records are append-only; a record's position is stable for the lifetime
// of the collection. All operations are safe for concurrent use by a single
// writer and multiple readers.
type Collection[T any] struct {
	mu      sync.RWMutex
	items   []T
	filters map[string]Projection[T]
	indexes map[string]*index
}

// New creates an empty collection.
func New[T any]() *Collection[T] {
	return &Collection[T]{
		filters: make(map[string]Projection[T]),
		indexes: make(map[string]*index),
	}
}

// AddFilter registers a named projection and builds its inverted index.
//
// The projection is applied retroactively to every stored record in
// position order, and prospectively to every future one. Names must be
// non-empty, contain no whitespace, and be unique.
func (c *Collection[T]) AddFilter(name string, projection Projection[T]) error {
	if name == "" || strings.ContainsAny(name, " \t\n") {
		return fmt.Errorf("%w: %q", ErrInvalidFilterName, name)
	}
	if projection == nil {
		return fmt.Errorf("%w: nil projection for %q", ErrInvalidFilterName, name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.filters[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateFilter, name)
	}

	ix := newIndex()
	for pos, item := range c.items {
		ix.insert(pos, projection(item))
	}
	c.filters[name] = projection
	c.indexes[name] = ix

	return nil
}

// Add appends a record and updates every registered index.
// It returns the assigned position.
func (c *Collection[T]) Add(item T) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	pos := len(c.items)
	c.items = append(c.items, item)

	for name, projection := range c.filters {
		c.indexes[name].insert(pos, projection(item))
	}

	return pos
}

// Keys returns the distinct keys present in the named filter's index, in
// the order they were first inserted. The returned slice is a copy.
func (c *Collection[T]) Keys(name string) ([]Key, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ix, ok := c.indexes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
	}

	keys := make([]Key, len(ix.keys))
	copy(keys, ix.keys)

	return keys, nil
}

// Get returns the records whose projection produced key under the named
// filter, in insertion order. An unknown key yields an empty, non-nil
// slice. The returned slice is a copy and never aliases internal state.
func (c *Collection[T]) Get(name string, key Key) ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ix, ok := c.indexes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
	}

	positions := ix.postings[key.MapKey()]
	out := make([]T, len(positions))
	for i, pos := range positions {
		out[i] = c.items[pos]
	}

	return out, nil
}

// Filter returns a read handle bound to the named filter.
func (c *Collection[T]) Filter(name string) (*Filter[T], error) {
	c.mu.RLock()
	_, ok := c.indexes[name]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
	}

	return &Filter[T]{c: c, name: name}, nil
}

// HasFilter reports whether a filter is registered under name.
func (c *Collection[T]) HasFilter(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.filters[name]
	return ok
}

// FilterNames returns the registered filter names in unspecified order.
func (c *Collection[T]) FilterNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.filters))
	for name := range c.filters {
		names = append(names, name)
	}
	return names
}

// Select returns the records matching pred, in insertion order.
// It is a linear scan; variant-tag matching over a tagged union is the
// intended use.
func (c *Collection[T]) Select(pred func(T) bool) []T {
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

// Len returns the number of stored records.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// At returns the record at the given position.
func (c *Collection[T]) At(pos int) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if pos < 0 || pos >= len(c.items) {
		var zero T
		return zero, false
	}
	return c.items[pos], true
}

// Items returns a copy of the stored records in insertion order.
func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Filter is a read handle bound to a single registered filter.
//
// It exposes the per-filter query surface without allowing mutation of the
// underlying index.
type Filter[T any] struct {
	c    *Collection[T]
	name string
}

// Name returns the filter name the handle is bound to.
func (f *Filter[T]) Name() string { return f.name }

// Keys returns the distinct keys of the bound filter in first-insertion
// order.
func (f *Filter[T]) Keys() []Key {
	keys, _ := f.c.Keys(f.name)
	return keys
}

// Get returns the records indexed under key by the bound filter.
func (f *Filter[T]) Get(key Key) []T {
	items, _ := f.c.Get(f.name, key)
	return items
}
