package store

import (
	"sync"

	"github.com/google/uuid"

	appLog "webcal/internal/log"
	"webcal/internal/model"
)

// IDGenerator produces candidate event identifiers. Candidates that collide
// with an id already in the store are discarded and a new one is requested.
type IDGenerator func() string

// maxIDAttempts bounds calls to a store's IDGenerator per Add. After that
// Add falls back to UUIDGenerator.
const maxIDAttempts = 16

// UUIDGenerator is the default IDGenerator.
func UUIDGenerator() string {
	return uuid.NewString()
}

// Store is an in-memory, insertion-ordered collection of events.
//
// The HTTP layer calls into it from multiple goroutines, so every method
// takes the lock; each call still behaves as one atomic step.
type Store struct {
	mu     sync.RWMutex
	events []model.Event
	gen    IDGenerator
}

// New constructs a Store seeded with the given events. A nil gen selects
// UUIDGenerator.
func New(gen IDGenerator, seed ...model.Event) *Store {
	if gen == nil {
		gen = UUIDGenerator
	}
	events := make([]model.Event, len(seed))
	copy(events, seed)
	return &Store{
		events: events,
		gen:    gen,
	}
}

// Add assigns a fresh identifier to d and appends the resulting event.
// Any id already present on d is ignored.
func (s *Store) Add(d model.Draft) model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.freshIDLocked()

	e := d.Event(id)
	s.events = append(s.events, e)
	appLog.Debug("store: event added", "id", id, "size", len(s.events))
	return e
}

// Update replaces the event whose id matches e.ID in place. Unknown ids
// are ignored.
func (s *Store) Update(e model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(e.ID)
	if i < 0 {
		appLog.Debug("store: update for unknown id ignored", "id", e.ID)
		return
	}
	s.events[i] = e
}

// Remove deletes the event with the given id. Unknown ids are ignored.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return
	}
	s.events = append(s.events[:i], s.events[i+1:]...)
	appLog.Debug("store: event removed", "id", id, "size", len(s.events))
}

// All returns a copy of every event in insertion order.
func (s *Store) All() []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *Store) Get(id string) (model.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return model.Event{}, false
	}
	return s.events[i], true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

func (s *Store) freshIDLocked() string {
	for i := 0; i < maxIDAttempts; i++ {
		if id := s.gen(); id != "" && s.indexLocked(id) < 0 {
			return id
		}
	}
	appLog.Debug("store: id generator exhausted, using uuid", "attempts", maxIDAttempts)
	for {
		if id := UUIDGenerator(); s.indexLocked(id) < 0 {
			return id
		}
	}
}

func (s *Store) indexLocked(id string) int {
	for i := range s.events {
		if s.events[i].ID == id {
			return i
		}
	}
	return -1
}
