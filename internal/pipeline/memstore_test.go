package pipeline

import (
	"context"
	"sync"

	"github.com/stahnma/gh-trending/internal/trending"
)

type memStore struct {
	mu       sync.Mutex
	docs     map[string][]byte
	writeErr error
	writes   int
}

func newMemStore() *memStore {
	return &memStore{docs: map[string][]byte{}}
}

func (m *memStore) Read(_ context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.docs[name]
	if !ok {
		return nil, trending.NewError(trending.ErrNotFound, "read "+name, nil)
	}
	return append([]byte(nil), data...), nil
}

func (m *memStore) Write(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return trending.NewError(trending.ErrPersistence, "write "+name, m.writeErr)
	}
	m.writes++
	m.docs[name] = append([]byte(nil), data...)
	return nil
}

type fakeFetcher struct {
	records []trending.Record
	err     error
	calls   int
}

func (f *fakeFetcher) Fetch(_ context.Context, _, _ string) ([]trending.Record, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]trending.Record, len(f.records))
	for i, r := range f.records {
		out[i] = r.Clone()
	}
	return out, nil
}
