package docstore

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryClient is an in-memory Client used to exercise record-store and
// aggregator logic without a hosted database. It supports equality filters,
// single-field ordering and limits, and can be told to fail wholesale or only
// for ordered queries (simulating a missing composite index).
type MemoryClient struct {
	mu          sync.Mutex
	collections map[string]map[string]map[string]any
	setCalls    []SetCall
	err         error
	orderedErr  error
}

// SetCall captures one write issued against the client.
type SetCall struct {
	Collection string
	ID         string
	Data       map[string]any
}

// NewMemoryClient returns an empty in-memory store.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{collections: make(map[string]map[string]map[string]any)}
}

// Seed inserts a document directly, bypassing Set bookkeeping.
func (m *MemoryClient) Seed(collection, id string, data map[string]any) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string]map[string]any)
	}
	m.collections[collection][id] = cloneDoc(data)
	return m
}

// WithError makes every subsequent operation fail with err.
func (m *MemoryClient) WithError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithOrderedQueryError makes only ordered queries fail with err, leaving
// unordered queries working. Pass ErrMissingIndex to simulate a store with no
// composite index.
func (m *MemoryClient) WithOrderedQueryError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orderedErr = err
	return m
}

// SetCalls returns a snapshot of all writes issued so far.
func (m *MemoryClient) SetCalls() []SetCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SetCall(nil), m.setCalls...)
}

func (m *MemoryClient) Get(_ context.Context, collection, id string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return Document{}, m.err
	}
	data, ok := m.collections[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Data: cloneDoc(data)}, nil
}

func (m *MemoryClient) Set(_ context.Context, collection, id string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string]map[string]any)
	}
	existing := m.collections[collection][id]
	if existing == nil {
		existing = make(map[string]any)
		m.collections[collection][id] = existing
	}
	for k, v := range data {
		existing[k] = v
	}
	m.setCalls = append(m.setCalls, SetCall{Collection: collection, ID: id, Data: cloneDoc(data)})
	return nil
}

func (m *MemoryClient) Query(_ context.Context, collection string, q Query) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if q.OrderBy != "" && m.orderedErr != nil {
		return nil, m.orderedErr
	}

	var docs []Document
	for id, data := range m.collections[collection] {
		if matchesFilters(data, q.Filters) {
			docs = append(docs, Document{ID: id, Data: cloneDoc(data)})
		}
	}

	if q.OrderBy != "" {
		sort.Slice(docs, func(i, j int) bool {
			less := lessValue(docs[i].Data[q.OrderBy], docs[j].Data[q.OrderBy])
			if q.Descending {
				return !less
			}
			return less
		})
	} else {
		// Deterministic order for unordered queries.
		sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	}

	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

func (m *MemoryClient) Close() error {
	return nil
}

func matchesFilters(data map[string]any, filters []Filter) bool {
	for _, f := range filters {
		if f.Op != "==" {
			return false
		}
		if data[f.Field] != f.Value {
			return false
		}
	}
	return true
}

func lessValue(a, b any) bool {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Before(bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return av < bv
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return av < bv
		}
	case int:
		if bv, ok := b.(int); ok {
			return av < bv
		}
	}
	return false
}

func cloneDoc(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
