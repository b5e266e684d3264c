package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryDocumentStore is an in-memory DocumentStore used by tests and as a
// dev fallback when no Firestore project is configured.
type MemoryDocumentStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]interface{}

	// FailNext, when set, makes every call return ErrStoreUnavailable.
	// Tests use it to exercise the fallback paths.
	FailNext bool
}

// NewMemoryDocumentStore creates an empty in-memory document store.
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{
		collections: make(map[string]map[string]map[string]interface{}),
	}
}

func (s *MemoryDocumentStore) unavailable(op string) error {
	return fmt.Errorf("%w: memory store: %s", ErrStoreUnavailable, op)
}

// Get fetches a single document.
func (s *MemoryDocumentStore) Get(ctx context.Context, collection, id string) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailNext {
		return nil, s.unavailable("get")
	}
	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return cloneDoc(doc), nil
}

// List fetches every document in a collection, ordered by key for
// deterministic tests.
func (s *MemoryDocumentStore) List(ctx context.Context, collection string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailNext {
		return nil, s.unavailable("list")
	}
	col := s.collections[collection]
	ids := make([]string, 0, len(col))
	for id := range col {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, Document{ID: id, Data: cloneDoc(col[id])})
	}
	return docs, nil
}

// Query fetches documents whose field equals value.
func (s *MemoryDocumentStore) Query(ctx context.Context, collection, field string, value interface{}) ([]Document, error) {
	all, err := s.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	var docs []Document
	for _, d := range all {
		if d.Data[field] == value {
			docs = append(docs, d)
		}
	}
	return docs, nil
}

// Set writes a document with merge semantics.
func (s *MemoryDocumentStore) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailNext {
		return s.unavailable("set")
	}
	col, ok := s.collections[collection]
	if !ok {
		col = make(map[string]map[string]interface{})
		s.collections[collection] = col
	}
	doc, ok := col[id]
	if !ok {
		doc = make(map[string]interface{})
		col[id] = doc
	}
	for k, v := range data {
		doc[k] = v
	}
	return nil
}

// Delete removes a document. Deleting an absent document is not an error.
func (s *MemoryDocumentStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailNext {
		return s.unavailable("delete")
	}
	delete(s.collections[collection], id)
	return nil
}

func cloneDoc(doc map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
