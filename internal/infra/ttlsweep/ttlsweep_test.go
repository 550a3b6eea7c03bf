package ttlsweep

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverTenantsListsOverrideFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acme.yaml"), []byte("retention_days: 30\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "globex.yml"), []byte("retention_days: 60\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("not a tenant"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir.yaml"), 0o755))

	tenants, err := discoverTenants(dir)
	require.NoError(t, err)
	sort.Strings(tenants)
	assert.Equal(t, []string{"acme", "globex"}, tenants)
}

func TestDiscoverTenantsMissingDirIsNotAnError(t *testing.T) {
	tenants, err := discoverTenants(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, tenants)
}
