// Package aspect implements C5: a race-safe, first-writer-wins keyed
// attachment of side state to an otherwise plain Go value. The engine uses
// it to hang a single Dispatching record off each generic function's
// identity without that function needing a field of its own to hold it —
// the Go analogue of peak.rules.core's __dict__ + setdefault trick over
// Python function objects.
package aspect

import (
	"fmt"
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Store is a keyed attachment table: (AspectClass, key) → instance. The
// first caller to ask for a given (class, key) pair constructs the
// instance; concurrent callers for the same pair block on that
// construction and all receive the same result, never racing to
// construct or silently overwrite one another's work.
type Store struct {
	mu    sync.RWMutex
	items map[string]any
	sf    singleflight.Group
}

// NewStore returns an empty aspect store.
func NewStore() *Store {
	return &Store{items: map[string]any{}}
}

func storeKey(aspectClass reflect.Type, ident any) string {
	return fmt.Sprintf("%s|%v", aspectClass, ident)
}

// GetOrCreate returns the existing instance for (aspectClass, ident), or
// constructs one via create and attaches it. If two goroutines race on
// the same pair's first access, only one calls create; the other
// receives its result instead of discarding a redundant instance of its
// own.
func (s *Store) GetOrCreate(aspectClass reflect.Type, ident any, create func() any) any {
	key := storeKey(aspectClass, ident)

	s.mu.RLock()
	if v, ok := s.items[key]; ok {
		s.mu.RUnlock()
		return v
	}
	s.mu.RUnlock()

	v, _, _ := s.sf.Do(key, func() (any, error) {
		s.mu.RLock()
		if v, ok := s.items[key]; ok {
			s.mu.RUnlock()
			return v, nil
		}
		s.mu.RUnlock()

		created := create()
		s.mu.Lock()
		s.items[key] = created
		s.mu.Unlock()
		return created, nil
	})
	return v
}

// ExistsFor reports whether an instance has already been attached for
// (aspectClass, ident).
func (s *Store) ExistsFor(aspectClass reflect.Type, ident any) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[storeKey(aspectClass, ident)]
	return ok
}

// Delete removes the instance attached for (aspectClass, ident), if any.
func (s *Store) Delete(aspectClass reflect.Type, ident any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, storeKey(aspectClass, ident))
}

// Default is the process-wide store pkg/gf attaches Dispatching records
// to. Tests that need isolation construct their own Store instead.
var Default = NewStore()
