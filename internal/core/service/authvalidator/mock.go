package authvalidator

import (
	"context"

	"github.com/elnvault/eln-core/internal/core/entity"
	"github.com/elnvault/eln-core/internal/core/port"
)

// MockUser is one entry in a MockProvider's static user list.
type MockUser struct {
	Token       string
	Subject     string
	Email       string
	Groups      []string
	Permissions []string
	IsAdmin     bool
}

// MockProvider backs development and tests: bearer tokens are opaque keys
// into a fixed, configured user list rather than signed JWTs.
type MockProvider struct {
	users map[string]MockUser
}

// NewMockProvider builds a MockProvider from a static list.
func NewMockProvider(users []MockUser) *MockProvider {
	m := make(map[string]MockUser, len(users))
	for _, u := range users {
		m[u.Token] = u
	}
	return &MockProvider{users: m}
}

// Validate implements port.IdentityProvider.
func (m *MockProvider) Validate(_ context.Context, bearerToken string) (*port.TokenClaims, error) {
	u, ok := m.users[bearerToken]
	if !ok {
		return nil, entity.NewError(entity.KindUnauthenticated, "unrecognized mock token")
	}
	return &port.TokenClaims{
		Subject:     u.Subject,
		Email:       u.Email,
		Groups:      u.Groups,
		Permissions: u.Permissions,
		IsAdmin:     u.IsAdmin,
	}, nil
}
