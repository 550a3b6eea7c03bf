package infra

import (
	"context"
	"time"

	"github.com/google/wire"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	riverqueue "github.com/riverqueue/river"

	"github.com/elnvault/eln-core/internal/adapters/primary/http/controller"
	"github.com/elnvault/eln-core/internal/adapters/secondary/database/postgres"
	riveradapter "github.com/elnvault/eln-core/internal/adapters/secondary/queue/river"
	"github.com/elnvault/eln-core/internal/adapters/secondary/storage/fs"
	"github.com/elnvault/eln-core/internal/adapters/secondary/storage/s3"
	"github.com/elnvault/eln-core/internal/core/port"
	"github.com/elnvault/eln-core/internal/core/service/authvalidator"
	"github.com/elnvault/eln-core/internal/core/service/configresolver"
	"github.com/elnvault/eln-core/internal/core/service/draftstore"
	"github.com/elnvault/eln-core/internal/core/service/filestager"
	"github.com/elnvault/eln-core/internal/core/service/sop"
	"github.com/elnvault/eln-core/internal/core/service/submission"
	"github.com/elnvault/eln-core/internal/infra/config"
	"github.com/elnvault/eln-core/internal/infra/scheduler"
	"github.com/elnvault/eln-core/internal/infra/server"
	"github.com/elnvault/eln-core/internal/infra/ttlsweep"
)

// ProviderSet is the full dependency graph `wire` reads out of
// cmd/api/wire.go. It is not evaluated outside a wireinject build — see
// cmd/api/wire_gen.go for the hand-verified equivalent this module actually
// compiles and runs.
var ProviderSet = wire.NewSet(
	config.MustLoad,
	ProvideStorage,
	ProvidePostgresPool,
	ProvideResolver,
	ProvideProviderCache,
	ProvideRiverClient,
	ProvideMoveQueue,
	sop.New,
	draftstore.New,
	filestager.New,
	submission.New,
	ProvideScheduler,
	controller.NewHealthController,
	controller.NewConfigController,
	controller.NewSOPController,
	controller.NewDraftController,
	controller.NewFileController,
	controller.NewSubmissionController,
	server.NewHTTPServer,
	NewInitializer,
)

// ProvideStorage selects the object-store backend named by cfg.Storage —
// every tenant shares this one adapter; isolation is by tenant-prefixed
// key (DESIGN.md, "Storage backend selection"), not by separate backends.
func ProvideStorage(cfg *config.Config) (port.StorageAdapter, error) {
	switch cfg.Storage.Backend {
	case "s3":
		return s3.New(context.Background(), s3.Config{
			Bucket:   cfg.Storage.Bucket,
			Region:   cfg.Storage.Region,
			Endpoint: cfg.Storage.Endpoint,
		})
	default:
		return fs.New(cfg.Storage.Root)
	}
}

// ProvidePostgresPool builds the pool backing the River retry queue — the
// only relational state this core owns.
func ProvidePostgresPool(cfg *config.Config) (*pgxpool.Pool, error) {
	return postgres.NewPool(context.Background(), postgres.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnIdleTime: cfg.Database.MaxConnIdleDuration(),
	})
}

// ProvideResolver builds the per-(tenant, environment) Config Resolver.
func ProvideResolver(cfg *config.Config) (*configresolver.Resolver, error) {
	return configresolver.New(cfg.SettingsPath, cfg.TenantConfigDir)
}

// ProvideProviderCache builds the identity-provider cache. The mock
// provider is always constructed (from whatever mock_users app.yaml
// carries, empty in production) since a tenant's resolved config, not
// process config, decides whether any request ever reaches it.
func ProvideProviderCache(cfg *config.Config) *authvalidator.ProviderCache {
	users := make([]authvalidator.MockUser, 0, len(cfg.MockUsers))
	for _, u := range cfg.MockUsers {
		users = append(users, authvalidator.MockUser{
			Token:       u.Token,
			Subject:     u.Subject,
			Email:       u.Email,
			Groups:      u.Groups,
			Permissions: u.Permissions,
			IsAdmin:     u.IsAdmin,
		})
	}
	return authvalidator.NewProviderCache(authvalidator.NewMockProvider(users))
}

// ProvideRiverClient builds the shared river.Client with the attachment
// move worker registered, backed by storage directly (the worker only
// needs Move, which every port.StorageAdapter implements).
func ProvideRiverClient(pool *pgxpool.Pool, storage port.StorageAdapter) (*riverqueue.Client[pgx.Tx], error) {
	return riveradapter.NewClient(pool, storage)
}

// ProvideMoveQueue wraps the client for the Submission Engine's enqueue-only use.
func ProvideMoveQueue(client *riverqueue.Client[pgx.Tx]) port.MoveQueue {
	return riveradapter.NewQueue(client)
}

// ProvideScheduler builds the process scheduler and registers the draft
// TTL sweep (spec §4.6) against it. The scheduler itself is a teacher
// component reused unchanged; only the job registered against it is new.
func ProvideScheduler(cfg *config.Config, resolver *configresolver.Resolver, drafts *draftstore.Store) *scheduler.Scheduler {
	s := scheduler.New(true)
	ttlsweep.RegisterJob(func(name string, fn func(ctx context.Context) error) {
		s.RegisterJob(name, 6*time.Hour, fn)
	}, resolver, drafts, cfg.TenantConfigDir, cfg.Environment)
	return s
}
