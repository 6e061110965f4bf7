package passcode

import (
	"context"
	"sync"
	"time"
)

// InMemCodeStore implements CodeStore with a process-local map. It is meant
// for tests and single-instance development only: consecutive steps of one
// attempt may be served by different instances in a real deployment, and a
// process-local store breaks that.
type InMemCodeStore struct {
	mutex sync.RWMutex
	codes map[string]Record
}

// NewInMemCodeStore creates an in-memory code store.
func NewInMemCodeStore() *InMemCodeStore {
	return &InMemCodeStore{
		codes: make(map[string]Record),
	}
}

func (s *InMemCodeStore) Put(ctx context.Context, subject string, record Record, ttl time.Duration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.codes[subject] = record
	return nil
}

func (s *InMemCodeStore) Get(ctx context.Context, subject string) (Record, error) {
	s.mutex.RLock()
	record, ok := s.codes[subject]
	s.mutex.RUnlock()

	if !ok {
		return Record{}, ErrCodeNotFound
	}

	// The map has no server-side expiry, so enforce it on read.
	if time.Now().UTC().After(record.ExpiresAt) {
		s.mutex.Lock()
		delete(s.codes, subject)
		s.mutex.Unlock()
		return Record{}, ErrCodeNotFound
	}

	return record, nil
}

func (s *InMemCodeStore) Delete(ctx context.Context, subject string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.codes, subject)
	return nil
}
