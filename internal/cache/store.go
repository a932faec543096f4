// Package cache is the client's keyed view of server resources. Reads go
// through Fetch, which serves fresh entries locally and deduplicates
// concurrent fetches of the same key; mutations invalidate keys so the next
// read refetches. The store guarantees read-after-write consistency for the
// client's own writes and nothing across clients.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	value     interface{}
	stale     bool
	fetchedAt time.Time
}

// Listener observes key invalidations, letting screens refresh views built on
// a key someone else invalidated.
type Listener func(Key)

type Store struct {
	mu        sync.RWMutex
	entries   map[Key]*entry
	listeners map[int]Listener
	nextID    int
	group     singleflight.Group
}

func NewStore() *Store {
	return &Store{
		entries:   make(map[Key]*entry),
		listeners: make(map[int]Listener),
	}
}

// Get returns the cached value for key if present and fresh.
func (s *Store) Get(key Key) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok || e.stale {
		return nil, false
	}
	return e.value, true
}

// Peek returns the cached value even when stale, for optimistic snapshots.
func (s *Store) Peek(key Key) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Set stores a fresh value under key. Optimistic updates and successful
// fetches both land here.
func (s *Store) Set(key Key, value interface{}) {
	s.mu.Lock()
	s.entries[key] = &entry{value: value, fetchedAt: time.Now()}
	s.mu.Unlock()
}

// Prime seeds key with a stale value, typically restored from disk at
// startup. Peek serves it for immediate paint; the next Fetch still goes to
// the network. A key that already has an entry is left alone.
func (s *Store) Prime(key Key, value interface{}) {
	s.mu.Lock()
	if _, ok := s.entries[key]; !ok {
		s.entries[key] = &entry{value: value, stale: true}
	}
	s.mu.Unlock()
}

// Invalidate marks key stale. The value stays readable via Peek until the
// next Fetch replaces it.
func (s *Store) Invalidate(key Key) {
	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		e.stale = true
	}
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(key)
	}
}

// InvalidateMatching marks every key the predicate selects.
func (s *Store) InvalidateMatching(match func(Key) bool) {
	s.mu.Lock()
	var hit []Key
	for key, e := range s.entries {
		if match(key) {
			e.stale = true
			hit = append(hit, key)
		}
	}
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	for _, key := range hit {
		for _, fn := range listeners {
			fn(key)
		}
	}
}

// Subscribe registers a listener for invalidations. The returned function
// unsubscribes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// must be called with mu held
func (s *Store) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}

// fetchShared runs fetch at most once per key across concurrent callers and
// caches the result.
func (s *Store) fetchShared(ctx context.Context, key Key, fetch func(context.Context) (interface{}, error)) (interface{}, error) {
	v, err, _ := s.group.Do(string(key), func() (interface{}, error) {
		// Re-check under the flight: another caller may have completed a
		// fetch between our staleness check and joining the group.
		if cached, ok := s.Get(key); ok {
			return cached, nil
		}
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		s.Set(key, value)
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Fetch returns the cached value for key, fetching it when absent or stale.
// Concurrent fetches of the same key are deduplicated.
func Fetch[T any](ctx context.Context, s *Store, key Key, fetch func(context.Context) (T, error)) (T, error) {
	if cached, ok := s.Get(key); ok {
		if v, ok := cached.(T); ok {
			return v, nil
		}
	}

	v, err := s.fetchShared(ctx, key, func(ctx context.Context) (interface{}, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
