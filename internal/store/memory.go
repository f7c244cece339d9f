package store

import (
	"context"
	"sync"

	"FundDesk/internal/model"
)

// MemoryStore keeps the serialized state in memory.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load(_ context.Context) (*model.SystemState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return decodeState(m.data)
}

func (m *MemoryStore) Save(_ context.Context, state *model.SystemState) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	return nil
}

// Raw returns the last saved blob.
func (m *MemoryStore) Raw() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}

func (m *MemoryStore) Close() error { return nil }
