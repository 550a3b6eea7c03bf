package port

import "context"

// TokenClaims is the provider-agnostic result of validating a bearer token,
// before the delimiter normalization and permission-set expansion the Auth
// Validator service performs on top.
type TokenClaims struct {
	Subject     string
	Email       string
	Groups      []string
	Permissions []string
	IsAdmin     bool
}

// IdentityProvider verifies a bearer token and extracts its claims. The
// managed adapter checks a JWKS-fetched signature; the mock adapter looks
// the token up in a static configured user list. Neither ever logs the
// token or any claim value.
type IdentityProvider interface {
	Validate(ctx context.Context, bearerToken string) (*TokenClaims, error)
}
