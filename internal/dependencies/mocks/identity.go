package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/roomhub/internal/dependencies/identity"
	"github.com/mcoot/roomhub/internal/model"
)

// MockIdentity issues predictable identities: conn-1, conn-2, ...
type MockIdentity struct {
	mu   sync.Mutex
	next int
}

var _ identity.Source = (*MockIdentity)(nil)

// NewMockIdentity creates a new MockIdentity
func NewMockIdentity() *MockIdentity {
	return &MockIdentity{}
}

// NewConnID returns the next sequential identity
func (m *MockIdentity) NewConnID() model.ConnID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return model.ConnID(fmt.Sprintf("conn-%d", m.next))
}
