// Package authvalidator implements the Auth Validator (spec §4.2):
// validate(bearer) -> User | fails(Unauthenticated | Expired | Malformed |
// ProviderUnreachable), plus the delimiter normalization decision recorded
// in SPEC_FULL.md §9 (normalize, don't reject).
package authvalidator

import (
	"context"
	"strings"

	"github.com/elnvault/eln-core/internal/core/entity"
	"github.com/elnvault/eln-core/internal/core/port"
	"github.com/elnvault/eln-core/internal/core/service/filenamecodec"
)

// Validator wraps a provider-specific port.IdentityProvider with the
// delimiter-normalization and permission-expansion steps common to both
// the managed and mock providers.
type Validator struct {
	provider port.IdentityProvider
	groupPermissions func(groups []string) []string
}

// New builds a Validator over provider. groupPermissions maps a user's
// groups to the tenant's configured permission set (spec §4.3); pass the
// resolved config's ExpandGroups for the tenant handling the request.
func New(provider port.IdentityProvider, groupPermissions func(groups []string) []string) *Validator {
	return &Validator{provider: provider, groupPermissions: groupPermissions}
}

// Validate checks bearerToken and returns the derived User. No claim value
// is ever logged by this function or by anything it calls.
func (v *Validator) Validate(ctx context.Context, bearerToken string) (*entity.User, error) {
	claims, err := v.provider.Validate(ctx, bearerToken)
	if err != nil {
		return nil, err
	}

	id := claims.Subject
	if strings.Contains(id, filenamecodec.Delimiter) {
		id = filenamecodec.Scrub(id)
	}

	permissions := claims.Permissions
	if v.groupPermissions != nil {
		permissions = append(permissions, v.groupPermissions(claims.Groups)...)
	}

	return &entity.User{
		ID:          id,
		Email:       claims.Email,
		Groups:      claims.Groups,
		Permissions: permissions,
		IsAdmin:     claims.IsAdmin,
	}, nil
}
