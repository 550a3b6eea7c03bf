package authvalidator

import (
	"context"
	"errors"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/elnvault/eln-core/internal/core/entity"
	"github.com/elnvault/eln-core/internal/core/port"
)

// eagerClaims is the JWT claim shape the managed provider expects from a
// signing-key-backed identity provider (Cognito/Keycloak/Auth0-shaped).
type eagerClaims struct {
	jwt.RegisteredClaims
	Email       string   `json:"email,omitempty"`
	Groups      []string `json:"groups,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	IsAdmin     bool     `json:"is_admin,omitempty"`
	TokenUse    string   `json:"token_use,omitempty"`
}

// ManagedProvider validates tokens against a remote JWKS endpoint. Keys
// are fetched once by keyfunc at construction and refreshed in the
// background; concurrent Validate calls for the identical token string
// share one parse via singleflight.
type ManagedProvider struct {
	jwks             keyfunc.Keyfunc
	issuer           string
	audience         string
	acceptedTokenUse []string
	sf               singleflight.Group
}

// NewManagedProvider fetches the initial JWKS from jwksURL and starts its
// background refresh loop. An empty acceptedTokenUse accepts any token_use.
func NewManagedProvider(ctx context.Context, jwksURL, issuer, audience string, acceptedTokenUse []string) (*ManagedProvider, error) {
	k, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, entity.Wrap(entity.KindProviderUnreachable, "fetching jwks", err)
	}
	return &ManagedProvider{jwks: k, issuer: issuer, audience: audience, acceptedTokenUse: acceptedTokenUse}, nil
}

// Validate implements port.IdentityProvider.
func (m *ManagedProvider) Validate(ctx context.Context, bearerToken string) (*port.TokenClaims, error) {
	var claims eagerClaims

	// singleflight is keyed by the token string, so every set of concurrent
	// calls validating the identical token shares one parse; the keyfunc
	// itself serializes any network fetch of the key set.
	key := bearerToken
	v, err, _ := m.sf.Do(key, func() (any, error) {
		token, perr := jwt.ParseWithClaims(bearerToken, &claims, m.jwks.Keyfunc,
			jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
			jwt.WithExpirationRequired(),
		)
		if perr != nil {
			return nil, classifyJWTError(perr)
		}
		if !token.Valid {
			return nil, entity.NewError(entity.KindUnauthenticated, "token invalid")
		}
		return &claims, nil
	})
	if err != nil {
		return nil, err
	}
	c := v.(*eagerClaims)

	if m.issuer != "" {
		iss, _ := c.GetIssuer()
		if iss != m.issuer {
			return nil, entity.NewError(entity.KindUnauthenticated, "issuer mismatch")
		}
	}
	if m.audience != "" {
		aud, _ := c.GetAudience()
		if !containsString(aud, m.audience) {
			return nil, entity.NewError(entity.KindUnauthenticated, "audience mismatch")
		}
	}
	if len(m.acceptedTokenUse) > 0 && !containsString(m.acceptedTokenUse, c.TokenUse) {
		return nil, entity.NewError(entity.KindUnauthenticated, "token_use not accepted")
	}

	return &port.TokenClaims{
		Subject:     c.Subject,
		Email:       c.Email,
		Groups:      c.Groups,
		Permissions: c.Permissions,
		IsAdmin:     c.IsAdmin,
	}, nil
}

func classifyJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return entity.Wrap(entity.KindUnauthenticated, "token expired", err)
	default:
		return entity.Wrap(entity.KindUnauthenticated, "token malformed", err)
	}
}

func containsString(xs []string, needle string) bool {
	for _, x := range xs {
		if x == needle {
			return true
		}
	}
	return false
}
