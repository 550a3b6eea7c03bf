package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elnvault/eln-core/internal/core/service/configresolver"
)

func newTestResolver(t *testing.T) *configresolver.Resolver {
	t.Helper()
	settingsDir := t.TempDir()
	tenantDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(settingsDir, "app.yaml"), []byte(`
storage_root: ./data
storage_backend: fs
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tenantDir, "acme.yaml"), []byte(`
storage_root: ./data/acme
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tenantDir, "globex.yaml"), []byte(`
storage_root: ./data/globex
`), 0o644))

	resolver, err := configresolver.New(settingsDir, tenantDir)
	require.NoError(t, err)
	return resolver
}

func newTenantRouter(resolver *configresolver.Resolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/probe", Tenant(resolver, "test"), func(c *gin.Context) {
		tenant, _ := GetTenant(c)
		cfg, _ := GetResolvedConfig(c)
		c.JSON(http.StatusOK, gin.H{"tenant": tenant, "storage_root": cfg.StorageRoot})
	})
	return r
}

func TestTenantMissingHeaderRejected(t *testing.T) {
	router := newTenantRouter(newTestResolver(t))

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTenantIsolatesResolvedConfigAcrossTenants(t *testing.T) {
	router := newTenantRouter(newTestResolver(t))

	acmeReq := httptest.NewRequest(http.MethodGet, "/probe", nil)
	acmeReq.Header.Set(TenantHeader, "acme")
	acmeRec := httptest.NewRecorder()
	router.ServeHTTP(acmeRec, acmeReq)
	require.Equal(t, http.StatusOK, acmeRec.Code)
	assert.JSONEq(t, `{"tenant":"acme","storage_root":"./data/acme"}`, acmeRec.Body.String())

	globexReq := httptest.NewRequest(http.MethodGet, "/probe", nil)
	globexReq.Header.Set(TenantHeader, "globex")
	globexRec := httptest.NewRecorder()
	router.ServeHTTP(globexRec, globexReq)
	require.Equal(t, http.StatusOK, globexRec.Code)
	assert.JSONEq(t, `{"tenant":"globex","storage_root":"./data/globex"}`, globexRec.Body.String())

	assert.NotEqual(t, acmeRec.Body.String(), globexRec.Body.String())
}

func TestTenantWithNoOverrideFileStillIsolatedByPrefix(t *testing.T) {
	router := newTenantRouter(newTestResolver(t))

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(TenantHeader, "unregistered-tenant")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tenant":"unregistered-tenant","storage_root":"./data"}`, rec.Body.String())
}
