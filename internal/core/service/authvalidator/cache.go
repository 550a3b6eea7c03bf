package authvalidator

import (
	"context"
	"fmt"
	"sync"

	"github.com/elnvault/eln-core/internal/core/entity"
	"github.com/elnvault/eln-core/internal/core/port"
)

// ProviderCache hands out the right port.IdentityProvider for a tenant's
// resolved identity-provider config, building managed (JWKS) providers
// lazily and caching them by JWKS URL so two tenants pointed at the same
// issuer share one keyfunc.Keyfunc and one background refresh goroutine.
type ProviderCache struct {
	mu      sync.Mutex
	managed map[string]*ManagedProvider
	mock    port.IdentityProvider
}

// NewProviderCache builds a cache. mockProvider backs every tenant
// configured with identity_provider.kind = "mock" (dev/test only).
func NewProviderCache(mockProvider port.IdentityProvider) *ProviderCache {
	return &ProviderCache{managed: make(map[string]*ManagedProvider), mock: mockProvider}
}

// Get returns the provider for cfg, constructing and caching a managed
// provider on first use for a given JWKS URL.
func (c *ProviderCache) Get(ctx context.Context, cfg entity.IdentityProviderConfig) (port.IdentityProvider, error) {
	if cfg.Kind == "mock" {
		if c.mock == nil {
			return nil, entity.NewError(entity.KindInvalid, "mock identity provider not configured")
		}
		return c.mock, nil
	}

	c.mu.Lock()
	if p, ok := c.managed[cfg.JWKSURL]; ok {
		c.mu.Unlock()
		return p, nil
	}
	c.mu.Unlock()

	provider, err := NewManagedProvider(ctx, cfg.JWKSURL, cfg.Issuer, cfg.Audience, cfg.AcceptedTokenUse)
	if err != nil {
		return nil, fmt.Errorf("authvalidator: building managed provider for %q: %w", cfg.JWKSURL, err)
	}

	c.mu.Lock()
	if existing, ok := c.managed[cfg.JWKSURL]; ok {
		c.mu.Unlock()
		return existing, nil
	}
	c.managed[cfg.JWKSURL] = provider
	c.mu.Unlock()
	return provider, nil
}
