package store

import (
	"context"
	"sync"
	"time"

	"github.com/moorwatch/wildfire-data-service/internal/domain"
)

// MemoryStore is a process-local Store. The default substrate when no Redis
// address is configured, and the one tests run against.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
}

type memoryRecord struct {
	value     []byte
	expiresAt time.Time // zero means no substrate-level expiry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]memoryRecord)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	rec, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !rec.expiresAt.IsZero() && domain.Clock().Now().After(rec.expiresAt) {
		s.mu.Lock()
		delete(s.records, key)
		s.mu.Unlock()
		return nil, false, nil
	}
	return rec.value, true, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	rec := memoryRecord{value: value}
	if ttl > 0 {
		rec.expiresAt = domain.Clock().Now().Add(ttl)
	}
	s.mu.Lock()
	s.records[key] = rec
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.records, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Ping(_ context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
