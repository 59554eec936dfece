package deck

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrDeckNotFound = errors.New("plan not found")

// Store keeps decks in process memory. It is safe for concurrent use;
// callers only ever see copies.
type Store struct {
	mu    sync.RWMutex
	decks map[string]*Deck
}

func NewStore() *Store {
	return &Store{decks: map[string]*Deck{}}
}

// Create stores a copy of d under a new ID and returns the stored copy.
func (s *Store) Create(d *Deck) *Deck {
	c := d.Clone()
	c.ID = uuid.NewString()
	s.mu.Lock()
	s.decks[c.ID] = c
	s.mu.Unlock()
	return c.Clone()
}

func (s *Store) Get(id string) (*Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.decks[id]
	if !ok {
		return nil, ErrDeckNotFound
	}
	return d.Clone(), nil
}

// Update runs fn against the stored deck under the write lock. Changes are
// discarded when fn returns an error.
func (s *Store) Update(id string, fn func(*Deck) error) (*Deck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.decks[id]
	if !ok {
		return nil, ErrDeckNotFound
	}
	work := d.Clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	s.decks[id] = work
	return work.Clone(), nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.decks[id]; !ok {
		return ErrDeckNotFound
	}
	delete(s.decks, id)
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.decks)
}
