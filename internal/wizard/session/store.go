package session

import (
	"sync"
	"time"

	"actibook/pkg/model"
)

// Store holds transient wizard state keyed by student ID. State lives
// only as long as the enrollment session; it is never durable and is
// dropped wholesale on commit, abort, or TTL expiry. Get and Set
// exchange copies, so stored state only ever changes under the
// store's lock.
type Store interface {
	Get(studentID string) (*model.WizardState, bool)
	Set(state *model.WizardState)
	Delete(studentID string)
	Stop()
}

type entry struct {
	state     *model.WizardState
	updatedAt time.Time
}

type InMemoryStore struct {
	mu     sync.RWMutex
	store  map[string]*entry
	ttl    time.Duration
	stopCh chan struct{}
}

func NewInMemoryStore(ttl time.Duration) *InMemoryStore {
	store := &InMemoryStore{
		store:  make(map[string]*entry),
		ttl:    ttl,
		stopCh: make(chan struct{}),
	}

	go store.cleanup()

	return store
}

func (s *InMemoryStore) Get(studentID string) (*model.WizardState, bool) {
	s.mu.RLock()
	e, exists := s.store[studentID]
	s.mu.RUnlock()

	if !exists {
		return nil, false
	}

	if time.Since(e.updatedAt) > s.ttl {
		s.mu.Lock()
		delete(s.store, studentID)
		s.mu.Unlock()
		return nil, false
	}

	return e.state.Clone(), true
}

func (s *InMemoryStore) Set(state *model.WizardState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store[state.StudentID] = &entry{
		state:     state.Clone(),
		updatedAt: time.Now(),
	}
}

func (s *InMemoryStore) Delete(studentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.store, studentID)
}

func (s *InMemoryStore) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			for key, e := range s.store {
				if time.Since(e.updatedAt) > s.ttl {
					delete(s.store, key)
				}
			}
			s.mu.Unlock()
		case <-s.stopCh:
			return
		}
	}
}

func (s *InMemoryStore) Stop() {
	close(s.stopCh)
}
