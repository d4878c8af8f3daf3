// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"slices"
	"sync"

	"github.com/kozaktomas/face-auth/internal/database"
)

// MockDriverReader is a mock implementation of database.DriverReader
type MockDriverReader struct {
	mu      sync.RWMutex
	drivers map[int64]database.Driver
	closed  bool

	// Error injection
	ListError error
}

// NewMockDriverReader creates a new mock driver reader
func NewMockDriverReader(drivers ...database.Driver) *MockDriverReader {
	m := &MockDriverReader{drivers: make(map[int64]database.Driver)}
	for _, d := range drivers {
		m.drivers[d.ID] = d
	}
	return m
}

// AddDriver adds a driver to the mock table
func (m *MockDriverReader) AddDriver(d database.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[d.ID] = d
}

// ListWithImages returns drivers with a non-empty image, ordered by id
func (m *MockDriverReader) ListWithImages(ctx context.Context) ([]database.Driver, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []database.Driver
	for _, d := range m.drivers {
		if d.Image != "" {
			out = append(out, d)
		}
	}
	slices.SortFunc(out, func(a, b database.Driver) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out, nil
}

// Close marks the reader as closed
func (m *MockDriverReader) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called
func (m *MockDriverReader) Closed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

var _ database.DriverReader = (*MockDriverReader)(nil)
