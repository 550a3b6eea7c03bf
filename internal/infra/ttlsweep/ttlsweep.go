// Package ttlsweep wires the Draft Store's retention sweep (spec §4.6) into
// the process scheduler. Tenants are discovered from the override files in
// the tenant config directory — the same directory the Config Resolver
// reads — rather than from any central tenant registry, since this core
// keeps none.
package ttlsweep

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/elnvault/eln-core/internal/core/service/configresolver"
	"github.com/elnvault/eln-core/internal/core/service/draftstore"
)

// RegisterJob adds the TTL sweep to scheduler under name "draft_ttl_sweep".
// Call before scheduler.Start.
func RegisterJob(register func(name string, fn func(ctx context.Context) error), resolver *configresolver.Resolver, drafts *draftstore.Store, tenantConfigDir, environment string) {
	register("draft_ttl_sweep", func(ctx context.Context) error {
		tenants, err := discoverTenants(tenantConfigDir)
		if err != nil {
			return err
		}
		for _, tenant := range tenants {
			cfg, err := resolver.Resolve(tenant, environment)
			if err != nil {
				slog.ErrorContext(ctx, "ttl sweep: skipping unresolvable tenant",
					slog.String("tenant", tenant), slog.String("error", err.Error()))
				continue
			}
			swept, err := drafts.SweepExpired(ctx, tenant, cfg.RetentionDays)
			if err != nil {
				slog.ErrorContext(ctx, "ttl sweep failed", slog.String("tenant", tenant), slog.String("error", err.Error()))
				continue
			}
			if swept > 0 {
				slog.InfoContext(ctx, "ttl sweep removed expired drafts",
					slog.String("tenant", tenant), slog.Int("count", swept))
			}
		}
		return nil
	})
}

// discoverTenants lists the tenant ids with an override file in dir. A
// deployment with no per-tenant overrides yet (every tenant runs on base
// environment defaults) has nothing to discover; that is not an error.
func discoverTenants(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var tenants []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		tenants = append(tenants, strings.TrimSuffix(name, ext))
	}
	return tenants, nil
}
