// Package configresolver implements the Config Resolver (spec §4.1): a
// per-process, lazily-populated mapping from (tenant, environment) to a
// resolved configuration record, assembled by deep-merging a base
// environment record with a tenant override, with infrastructure
// identifiers re-read from process environment last.
package configresolver

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"dario.cat/mergo"
	"github.com/spf13/viper"

	"github.com/elnvault/eln-core/internal/core/entity"
)

type cacheKey struct {
	tenant string
	env    string
}

// envOverride pairs a ResolvedConfig field with the environment variable
// that takes precedence over it. Only infrastructure identifiers — values
// "known only to the provisioner" — participate in this second pass.
type envOverride struct {
	key   string
	apply func(cfg *entity.ResolvedConfig, val string)
}

// Resolver caches resolved configs per (tenant, environment) including
// negative results, which are never retried within the process lifetime.
type Resolver struct {
	base          *viper.Viper
	tenantConfigDir string
	cache         sync.Map // cacheKey -> resolveResult
}

type resolveResult struct {
	cfg *entity.ResolvedConfig
	err error
}

// New builds a Resolver. baseSettingsPath is a directory containing
// app.yaml (the base environment record); tenantConfigDir contains one
// YAML override file per tenant, named "<tenant>.yaml".
func New(baseSettingsPath, tenantConfigDir string) (*Resolver, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("yaml")
	v.AddConfigPath(baseSettingsPath)
	v.SetEnvPrefix("ELN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configresolver: reading base config: %w", err)
		}
	}

	return &Resolver{base: v, tenantConfigDir: tenantConfigDir}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("forms_location", "forms")
	v.SetDefault("draft_location", "drafts")
	v.SetDefault("submission_location", "submissions")
	v.SetDefault("retention_days", 30)
	v.SetDefault("storage_backend", "fs")
	v.SetDefault("storage_root", "./data")
	v.SetDefault("size_policy.max_file_size_bytes", 50*1024*1024)
	v.SetDefault("size_policy.max_request_aggregate_bytes", 200*1024*1024)
	v.SetDefault("identity_provider.kind", "mock")
}

// Resolve returns the merged config for (tenant, environment), resolving
// and caching it on first use. A failure is cached as a negative result:
// every subsequent call for the same key returns the same error without
// retrying, until process restart.
func (r *Resolver) Resolve(tenant, environment string) (*entity.ResolvedConfig, error) {
	key := cacheKey{tenant: tenant, env: environment}
	if v, ok := r.cache.Load(key); ok {
		res := v.(resolveResult)
		return res.cfg, res.err
	}

	cfg, err := r.resolve(tenant, environment)
	res := resolveResult{cfg: cfg, err: err}
	actual, _ := r.cache.LoadOrStore(key, res)
	stored := actual.(resolveResult)
	return stored.cfg, stored.err
}

func (r *Resolver) resolve(tenant, environment string) (*entity.ResolvedConfig, error) {
	var base entity.ResolvedConfig
	if err := r.base.Unmarshal(&base); err != nil {
		return nil, entity.Wrap(entity.KindInvalid, "unmarshaling base config", err)
	}

	if override, ok := r.loadTenantOverride(tenant); ok {
		if err := mergo.Merge(&base, override, mergo.WithOverride); err != nil {
			return nil, entity.Wrap(entity.KindInvalid, "merging tenant override", err)
		}
	}

	base.Tenant = tenant
	base.Environment = environment
	applyEnvOverrides(&base, tenant)

	if err := validate(&base); err != nil {
		return nil, err
	}
	return &base, nil
}

func (r *Resolver) loadTenantOverride(tenant string) (entity.ResolvedConfig, bool) {
	var override entity.ResolvedConfig
	if r.tenantConfigDir == "" {
		return override, false
	}
	tv := viper.New()
	tv.SetConfigName(tenant)
	tv.SetConfigType("yaml")
	tv.AddConfigPath(r.tenantConfigDir)
	if err := tv.ReadInConfig(); err != nil {
		return override, false
	}
	if err := tv.Unmarshal(&override); err != nil {
		return override, false
	}
	return override, true
}

// applyEnvOverrides reads infrastructure identifiers from process
// environment, tenant-scoped first (ELN_<TENANT>_<KEY>) then global
// (ELN_<KEY>), and applies whichever is set over the merged record.
func applyEnvOverrides(cfg *entity.ResolvedConfig, tenant string) {
	overrides := []envOverride{
		{"JWKS_URL", func(c *entity.ResolvedConfig, v string) { c.IdentityProvider.JWKSURL = v }},
		{"ISSUER", func(c *entity.ResolvedConfig, v string) { c.IdentityProvider.Issuer = v }},
		{"AUDIENCE", func(c *entity.ResolvedConfig, v string) { c.IdentityProvider.Audience = v }},
		{"POOL_ID", func(c *entity.ResolvedConfig, v string) { c.IdentityProvider.PoolID = v }},
		{"STORAGE_ROOT", func(c *entity.ResolvedConfig, v string) { c.StorageRoot = v }},
		{"STORAGE_BACKEND", func(c *entity.ResolvedConfig, v string) { c.StorageBackend = v }},
	}

	tenantPrefix := "ELN_" + strings.ToUpper(tenant) + "_"
	for _, o := range overrides {
		if v, ok := os.LookupEnv(tenantPrefix + o.key); ok {
			o.apply(cfg, v)
			continue
		}
		if v, ok := os.LookupEnv("ELN_" + o.key); ok {
			o.apply(cfg, v)
		}
	}
}

func validate(cfg *entity.ResolvedConfig) error {
	if cfg.IdentityProvider.Kind == "managed" && cfg.IdentityProvider.JWKSURL == "" {
		return entity.NewError(entity.KindInvalid, "managed identity provider requires jwks_url")
	}
	if cfg.StorageRoot == "" {
		return entity.NewError(entity.KindInvalid, "storage_root is required")
	}
	return nil
}
