package entity

// IdentityProviderConfig describes the token issuer a tenant/environment
// pair validates bearer tokens against.
type IdentityProviderConfig struct {
	Kind     string   `mapstructure:"kind" yaml:"kind"` // "managed" | "mock"
	JWKSURL  string   `mapstructure:"jwks_url" yaml:"jwks_url"`
	Issuer   string   `mapstructure:"issuer" yaml:"issuer"`
	Audience string   `mapstructure:"audience" yaml:"audience"`
	PoolID   string   `mapstructure:"pool_id" yaml:"pool_id"`
	// AcceptedTokenUse names the token_use claim values a bearer token may
	// carry (e.g. "access"); empty means any token_use is accepted. A
	// managed provider rejects tokens whose token_use isn't in this list
	// (spec §4.2: "token type is accepted").
	AcceptedTokenUse []string `mapstructure:"accepted_token_use" yaml:"accepted_token_use"`
}

// SizePolicy bounds uploaded file size and extension.
type SizePolicy struct {
	MaxFileSizeBytes   int64    `mapstructure:"max_file_size_bytes" yaml:"max_file_size_bytes"`
	MaxRequestAggBytes int64    `mapstructure:"max_request_aggregate_bytes" yaml:"max_request_aggregate_bytes"`
	AllowedExtensions  []string `mapstructure:"allowed_extensions" yaml:"allowed_extensions"`
	ForbiddenExtensions []string `mapstructure:"forbidden_extensions" yaml:"forbidden_extensions"`
}

// Allows reports whether ext (without leading dot, lowercase) may be
// uploaded under this policy. An explicit allow-list, when non-empty, is
// authoritative; otherwise anything not on the forbidden list passes.
func (p SizePolicy) Allows(ext string) bool {
	for _, f := range p.ForbiddenExtensions {
		if f == ext {
			return false
		}
	}
	if len(p.AllowedExtensions) == 0 {
		return true
	}
	for _, a := range p.AllowedExtensions {
		if a == ext {
			return true
		}
	}
	return false
}

// ResolvedConfig is the per-(tenant, environment) record the Config
// Resolver assembles: base environment config deep-merged with a tenant
// override, with infrastructure identifiers re-read from process
// environment last.
type ResolvedConfig struct {
	Tenant             string                 `mapstructure:"-" yaml:"-"`
	Environment        string                 `mapstructure:"-" yaml:"-"`
	FormsLocation      string                 `mapstructure:"forms_location" yaml:"forms_location"`
	DraftLocation      string                 `mapstructure:"draft_location" yaml:"draft_location"`
	SubmissionLocation string                 `mapstructure:"submission_location" yaml:"submission_location"`
	IdentityProvider   IdentityProviderConfig `mapstructure:"identity_provider" yaml:"identity_provider"`
	SizePolicy         SizePolicy             `mapstructure:"size_policy" yaml:"size_policy"`
	RetentionDays      int                    `mapstructure:"retention_days" yaml:"retention_days"`
	CORSOrigins        []string               `mapstructure:"cors_origins" yaml:"cors_origins"`
	StorageBackend     string                 `mapstructure:"storage_backend" yaml:"storage_backend"` // "s3" | "fs"
	StorageRoot        string                 `mapstructure:"storage_root" yaml:"storage_root"`
	GroupPermissions   map[string][]string    `mapstructure:"group_permissions" yaml:"group_permissions"`
}

// ExpandGroups returns the union of permissions mapped from groups by this
// tenant's configuration (spec §4.3: "the union of the sets mapped from
// their groups by the tenant's configuration").
func (c ResolvedConfig) ExpandGroups(groups []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, g := range groups {
		for _, p := range c.GroupPermissions[g] {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// PublicSubset returns the fields safe to expose from GET /api/config/runtime:
// identity-provider coordinates only, no secrets, no bucket/storage details.
func (c ResolvedConfig) PublicSubset() map[string]any {
	return map[string]any{
		"identityProvider": map[string]any{
			"kind":     c.IdentityProvider.Kind,
			"issuer":   c.IdentityProvider.Issuer,
			"audience": c.IdentityProvider.Audience,
		},
	}
}

// PrivateSubset returns the merged config visible to an authenticated
// caller. Admins see everything; non-admins get the same shape minus
// storage_root and identity_provider, which are treated as infrastructure
// secrets.
func (c ResolvedConfig) PrivateSubset(isAdmin bool) map[string]any {
	out := map[string]any{
		"formsLocation":      c.FormsLocation,
		"draftLocation":      c.DraftLocation,
		"submissionLocation": c.SubmissionLocation,
		"sizePolicy":         c.SizePolicy,
		"retentionDays":      c.RetentionDays,
		"corsOrigins":        c.CORSOrigins,
		"storageBackend":     c.StorageBackend,
	}
	if isAdmin {
		out["storageRoot"] = c.StorageRoot
		out["identityProvider"] = c.IdentityProvider
	}
	return out
}
