// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"

	"plannercheck/internal/store"
)

// FakeStore is an in-memory implementation of store.Store for testing.
type FakeStore struct {
	mu          sync.RWMutex
	collections map[string][]store.Document
	order       []string
	closed      bool

	// Error injection for testing
	PingErr            error
	CollectionNamesErr error
	CountErr           map[string]error // collection -> error
	FindErr            map[string]error // collection -> error
	FindOneErr         map[string]error // collection -> error
}

// NewFakeStore creates an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		collections: make(map[string][]store.Document),
		CountErr:    make(map[string]error),
		FindErr:     make(map[string]error),
		FindOneErr:  make(map[string]error),
	}
}

// AddCollection creates collection (if needed) and appends docs to it.
func (f *FakeStore) AddCollection(name string, docs ...store.Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.collections[name]; !ok {
		f.order = append(f.order, name)
		f.collections[name] = nil
	}
	f.collections[name] = append(f.collections[name], docs...)
}

// Closed reports whether Close was called.
func (f *FakeStore) Closed() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.closed
}

// Ping implements store.Store.
func (f *FakeStore) Ping(ctx context.Context) error {
	return f.PingErr
}

// CollectionNames implements store.Store. Names are returned in insertion
// order, not sorted.
func (f *FakeStore) CollectionNames(ctx context.Context) ([]string, error) {
	if f.CollectionNamesErr != nil {
		return nil, f.CollectionNamesErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, len(f.order))
	copy(names, f.order)
	return names, nil
}

// Count implements store.Store.
func (f *FakeStore) Count(ctx context.Context, collection string, filter store.Filter) (int64, error) {
	if err := f.CountErr[collection]; err != nil {
		return 0, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return int64(len(f.match(collection, filter, 0))), nil
}

// Find implements store.Store.
func (f *FakeStore) Find(ctx context.Context, collection string, filter store.Filter, limit int64) ([]store.Document, error) {
	if err := f.FindErr[collection]; err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.match(collection, filter, limit), nil
}

// FindOne implements store.Store.
func (f *FakeStore) FindOne(ctx context.Context, collection string, filter store.Filter) (store.Document, bool, error) {
	if err := f.FindOneErr[collection]; err != nil {
		return nil, false, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	docs := f.match(collection, filter, 1)
	if len(docs) == 0 {
		return nil, false, nil
	}
	return docs[0], true, nil
}

// Close implements store.Store.
func (f *FakeStore) Close(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// match returns documents equal on every filter key. Caller holds f.mu.
func (f *FakeStore) match(collection string, filter store.Filter, limit int64) []store.Document {
	var out []store.Document
	for _, doc := range f.collections[collection] {
		if !matches(doc, filter) {
			continue
		}
		out = append(out, doc)
		if limit > 0 && int64(len(out)) == limit {
			break
		}
	}
	return out
}

func matches(doc store.Document, filter store.Filter) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok || got != want {
			return false
		}
	}
	return true
}
