// Package session keeps one filter.Selection per browser session in a
// bounded LRU. Selections go in and come out as copies, so no two requests
// ever share a mutable Selection.
package session

import (
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/WessleyAI/sportscar-dash/engine/filter"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 1024

// Store maps session IDs to selections. It is safe for concurrent use.
type Store struct {
	cache *lru.Cache[string, filter.Selection]
}

// New returns a Store holding at most capacity sessions. The least recently
// used session is evicted first.
func New(capacity int) (*Store, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c, err := lru.New[string, filter.Selection](capacity)
	if err != nil {
		return nil, fmt.Errorf("session cache: %w", err)
	}
	return &Store{cache: c}, nil
}

// Create stores sel under a new random ID and returns the ID.
func (s *Store) Create(sel filter.Selection) string {
	id := uuid.NewString()
	s.cache.Add(id, sel.Clone())
	return id
}

// Get returns a copy of the selection for id.
func (s *Store) Get(id string) (filter.Selection, bool) {
	sel, ok := s.cache.Get(id)
	if !ok {
		return filter.Selection{}, false
	}
	return sel.Clone(), true
}

// Put replaces the selection for id.
func (s *Store) Put(id string, sel filter.Selection) {
	s.cache.Add(id, sel.Clone())
}

// Delete forgets id.
func (s *Store) Delete(id string) {
	s.cache.Remove(id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int { return s.cache.Len() }

// ValidID reports whether id has the shape of an ID returned by Create.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
