package remote

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used in tests and ephemeral runs.
// Documents are kept in insertion order per collection.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string][]Stored

	// InsertErr, when set, is returned by every Insert. Tests use it to
	// exercise persistence failure paths.
	InsertErr error
	// QueryErr, when set, is returned by every QueryByField.
	QueryErr error
}

// NewMemoryStore creates an empty in-memory document store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]Stored)}
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// Insert stores a copy of the document and returns its assigned id.
func (s *MemoryStore) Insert(_ context.Context, collection string, doc Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.InsertErr != nil {
		return "", s.InsertErr
	}

	fields := make(Document, len(doc))
	for k, v := range doc {
		fields[k] = v
	}

	id := uuid.NewString()
	s.collections[collection] = append(s.collections[collection], Stored{ID: id, Fields: fields})
	return id, nil
}

// QueryByField returns matching documents in insertion order.
func (s *MemoryStore) QueryByField(_ context.Context, collection, field string, value any) ([]Stored, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.QueryErr != nil {
		return nil, s.QueryErr
	}

	var results []Stored
	for _, stored := range s.collections[collection] {
		if stored.Fields[field] == value {
			results = append(results, stored)
		}
	}
	return results, nil
}

// Len reports how many documents a collection holds.
func (s *MemoryStore) Len(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.collections[collection])
}
