// Package roster owns the ordered list of characters. Every successful
// mutation rewrites the persisted roster; invalid input degrades to a no-op.
package roster

import (
	"log"

	"github.com/kittclouds/roster/internal/logging"
	"github.com/kittclouds/roster/internal/store"
)

// Store is the single owner of the roster order.
type Store struct {
	persist store.Storer
	items   []*store.Character
	log     *log.Logger
}

// New loads the roster once from persist.
func New(persist store.Storer, logger *log.Logger) *Store {
	s := &Store{persist: persist, log: logging.OrDiscard(logger)}
	s.items = persist.Load()
	s.log.Printf("roster loaded: %d characters", len(s.items))
	return s
}

// Reload replaces the in-memory roster with what is persisted, e.g. after an
// import.
func (s *Store) Reload() []*store.Character {
	s.items = s.persist.Load()
	return s.List()
}

// List returns copies of the characters in order.
func (s *Store) List() []*store.Character {
	out := make([]*store.Character, len(s.items))
	for i, c := range s.items {
		out[i] = c.Clone()
	}
	return out
}

// IDs returns the ids in order.
func (s *Store) IDs() []string {
	ids := make([]string, len(s.items))
	for i, c := range s.items {
		ids[i] = c.ID
	}
	return ids
}

// Len returns the number of characters.
func (s *Store) Len() int { return len(s.items) }

// Get returns a copy of the character with id.
func (s *Store) Get(id string) (*store.Character, bool) {
	i := s.IndexOf(id)
	if i < 0 {
		return nil, false
	}
	return s.items[i].Clone(), true
}

// Has reports whether id is in the roster.
func (s *Store) Has(id string) bool { return s.IndexOf(id) >= 0 }

// IndexOf returns the position of id, or -1.
func (s *Store) IndexOf(id string) int {
	for i, c := range s.items {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Add appends c. A nil character or one whose id is already present is
// ignored.
func (s *Store) Add(c *store.Character) ([]*store.Character, error) {
	if c == nil {
		return s.List(), nil
	}
	if s.Has(c.ID) {
		s.log.Printf("add: id %q already in roster, ignoring", c.ID)
		return s.List(), nil
	}
	s.items = append(s.items, c.Clone())
	return s.commit()
}

// Update replaces the record sharing c's id, keeping its position. Unknown
// ids are ignored.
func (s *Store) Update(c *store.Character) ([]*store.Character, error) {
	if c == nil {
		return s.List(), nil
	}
	i := s.IndexOf(c.ID)
	if i < 0 {
		s.log.Printf("update: id %q not in roster, ignoring", c.ID)
		return s.List(), nil
	}
	s.items[i] = c.Clone()
	return s.commit()
}

// Reorder moves activeID to the position of overID. Equal or unknown ids
// leave the roster untouched.
func (s *Store) Reorder(activeID, overID string) ([]*store.Character, error) {
	if activeID == overID {
		return s.List(), nil
	}
	from, to := s.IndexOf(activeID), s.IndexOf(overID)
	if from < 0 || to < 0 {
		s.log.Printf("reorder: %q -> %q not in roster, ignoring", activeID, overID)
		return s.List(), nil
	}
	s.items = Move(s.items, from, to)
	return s.commit()
}

// commit persists the whole roster. The in-memory change stands even when
// the write fails; the error is returned for the caller to surface.
func (s *Store) commit() ([]*store.Character, error) {
	if err := s.persist.Save(s.items); err != nil {
		s.log.Printf("persist failed: %v", err)
		return s.List(), err
	}
	return s.List(), nil
}
