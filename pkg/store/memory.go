package store

import "sync"

// MemoryStore is an in-process Store used in tests and as a fallback when
// no database is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]string

	// FailReads forces GetAll to return ErrForced, for fail-open tests.
	FailReads bool
}

// ErrForced is returned by a MemoryStore with FailReads set.
var ErrForced = errForced{}

type errForced struct{}

func (errForced) Error() string { return "settings store unavailable" }

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]string)}
}

func (m *MemoryStore) GetAll(namespace string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailReads {
		return nil, ErrForced
	}
	out := make(map[string]string, len(m.data[namespace]))
	for k, v := range m.data[namespace] {
		out[k] = v
	}
	return out, nil
}

func (m *MemoryStore) Set(namespace string, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ns := m.data[namespace]
	if ns == nil {
		ns = make(map[string]string)
		m.data[namespace] = ns
	}
	for k, v := range values {
		ns[k] = v
	}
	return nil
}
