// Package memstore is an in-memory store.Store.
package memstore

import (
	"context"
	"github.com/arya-analytics/gatekeeper/pkg/store"
	"github.com/google/uuid"
	"sync"
)

// Store keeps documents in memory in insertion order.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]store.Document
}

var _ store.Store = (*Store)(nil)

// New opens an empty Store.
func New() *Store { return &Store{collections: make(map[string][]store.Document)} }

// Find implements store.Store.
func (s *Store) Find(
	ctx context.Context,
	collection string,
	filter store.Filter,
) ([]store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.Wrap(err, "[memstore] - find")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var docs []store.Document
	for _, d := range s.collections[collection] {
		if filter.Matches(d) {
			docs = append(docs, d.Copy())
		}
	}
	return docs, nil
}

// Save implements store.Store. Saving a document whose key already exists replaces
// the stored document.
func (s *Store) Save(ctx context.Context, collection string, doc store.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", store.Wrap(err, "[memstore] - save")
	}
	doc = doc.Copy()
	key := doc.Key()
	if key == "" {
		key = uuid.New().String()
		doc[store.KeyField] = key
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.collections[collection]
	for i, d := range docs {
		if d.Key() == key {
			docs[i] = doc
			return key, nil
		}
	}
	s.collections[collection] = append(docs, doc)
	return key, nil
}
