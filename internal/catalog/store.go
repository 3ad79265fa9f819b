package catalog

import "sync/atomic"

// Store holds the currently published Catalog. Queries read the catalog
// lock-free while rebuilds swap in a replacement; a query that started
// against the old catalog keeps seeing it until it completes.
type Store struct {
	current atomic.Pointer[Catalog]
}

// NewStore returns a Store pre-published with an empty catalog so readers
// never observe nil.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(New(nil))
	return s
}

// Current returns the most recently published catalog.
func (s *Store) Current() *Catalog {
	return s.current.Load()
}

// Publish atomically replaces the current catalog.
func (s *Store) Publish(c *Catalog) {
	if c == nil {
		c = New(nil)
	}
	s.current.Store(c)
}
