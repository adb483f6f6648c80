package identity

import (
	"github.com/google/uuid"

	"github.com/mcoot/roomhub/internal/model"
)

// Source mints connection identities
type Source interface {
	NewConnID() model.ConnID
}

// UUIDSource issues random UUIDv4 identities
type UUIDSource struct{}

// New creates a new UUIDSource
func New() *UUIDSource {
	return &UUIDSource{}
}

// NewConnID returns a fresh identity
func (s *UUIDSource) NewConnID() model.ConnID {
	return model.ConnID(uuid.NewString())
}
