package repositories

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreDocumentStore is a Firestore-backed DocumentStore.
type FirestoreDocumentStore struct {
	client *firestore.Client
}

// NewFirestoreDocumentStore wraps an already-constructed Firestore client.
// The client is injected so tests and callers control initialization instead
// of relying on ambient lazy setup.
func NewFirestoreDocumentStore(client *firestore.Client) *FirestoreDocumentStore {
	return &FirestoreDocumentStore{client: client}
}

// Get fetches a single document.
func (s *FirestoreDocumentStore) Get(ctx context.Context, collection, id string) (map[string]interface{}, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
		}
		return nil, fmt.Errorf("%w: get %s/%s: %v", ErrStoreUnavailable, collection, id, err)
	}
	return snap.Data(), nil
}

// List fetches every document in a collection.
func (s *FirestoreDocumentStore) List(ctx context.Context, collection string) ([]Document, error) {
	return s.drain(collection, s.client.Collection(collection).Documents(ctx))
}

// Query fetches documents whose field equals value.
func (s *FirestoreDocumentStore) Query(ctx context.Context, collection, field string, value interface{}) ([]Document, error) {
	it := s.client.Collection(collection).Where(field, "==", value).Documents(ctx)
	return s.drain(collection, it)
}

func (s *FirestoreDocumentStore) drain(collection string, it *firestore.DocumentIterator) ([]Document, error) {
	defer it.Stop()
	var docs []Document
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: iterate %s: %v", ErrStoreUnavailable, collection, err)
		}
		docs = append(docs, Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
}

// Set writes a document with merge semantics.
func (s *FirestoreDocumentStore) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, data, firestore.MergeAll); err != nil {
		return fmt.Errorf("%w: set %s/%s: %v", ErrStoreUnavailable, collection, id, err)
	}
	return nil
}

// Delete removes a document. Deleting an absent document is not an error.
func (s *FirestoreDocumentStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("%w: delete %s/%s: %v", ErrStoreUnavailable, collection, id, err)
	}
	return nil
}
