package progress

import "sync"

// MemoryStore keeps solved state in memory only. Used by tests and by
// throwaway runs of the terminal client.
type MemoryStore struct {
	mu    sync.Mutex
	state State
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: State{}}
}

// Load returns a copy of the held state.
func (m *MemoryStore) Load() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// Save replaces the held state with a copy of the given mapping.
func (m *MemoryStore) Save(state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state.Clone()
	return nil
}

// Reset clears the held state.
func (m *MemoryStore) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = State{}
	return nil
}

// MemoryFactory hands out MemoryStores keyed by player, so repeated
// sessions under the same key within one process share progress.
type MemoryFactory struct {
	mu     sync.Mutex
	stores map[string]*MemoryStore
}

// NewMemoryFactory creates an empty in-memory factory.
func NewMemoryFactory() *MemoryFactory {
	return &MemoryFactory{stores: make(map[string]*MemoryStore)}
}

// StoreFor returns the store for one player key, creating it on first
// use.
func (f *MemoryFactory) StoreFor(key string) (Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.stores[key]; ok {
		return s, nil
	}
	s := NewMemoryStore()
	f.stores[key] = s
	return s, nil
}
