package snapshot

import (
	"context"
	"sync"

	apperrors "github.com/jwalitptl/lims-api/pkg/errors"
)

// MemoryAdapter keeps the snapshot in process memory. It still goes through
// the JSON encoding so tests exercise the same round-trip as real backends.
type MemoryAdapter struct {
	mu      sync.Mutex
	data    []byte
	saves   int
	failure error
}

func NewMemory() *MemoryAdapter {
	return &MemoryAdapter{}
}

func (m *MemoryAdapter) Save(ctx context.Context, state *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failure != nil {
		return apperrors.Persistence("snapshot save failed", m.failure)
	}
	data, err := encode(state)
	if err != nil {
		return err
	}
	m.data = data
	m.saves++
	return nil
}

func (m *MemoryAdapter) Load(ctx context.Context) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return Empty(), nil
	}
	return decode(m.data)
}

func (m *MemoryAdapter) Close() error {
	return nil
}

// SaveCount reports how many saves have succeeded.
func (m *MemoryAdapter) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// FailWith makes subsequent saves fail with err; pass nil to recover.
func (m *MemoryAdapter) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failure = err
}

// SetRaw replaces the stored bytes, for corrupt-snapshot tests.
func (m *MemoryAdapter) SetRaw(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
}
