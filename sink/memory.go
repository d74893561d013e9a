package sink

import (
	"context"
	"slices"
	"sync"
)

// Memory keeps delivered archives in memory. The zero value is ready to use.
type Memory struct {
	mu    sync.Mutex
	names []string
	data  map[string][]byte
}

// Deliver stores a copy of data under name. A later delivery under the
// same name replaces the earlier one.
func (m *Memory) Deliver(ctx context.Context, data []byte, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	if _, ok := m.data[name]; !ok {
		m.names = append(m.names, name)
	}
	m.data[name] = slices.Clone(data)
	return nil
}

// Get returns the archive delivered under name.
func (m *Memory) Get(name string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[name]
	return data, ok
}

// Names returns the delivered names in first-delivery order.
func (m *Memory) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.names)
}

// Len returns the number of distinct names delivered.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.names)
}
