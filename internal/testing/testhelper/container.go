//go:build integration

package testhelper

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var (
	testContainer *postgres.PostgresContainer
	testPool      *pgxpool.Pool
	once          sync.Once
	initErr       error
)

// GetTestPool returns a connection pool to a PostgreSQL testcontainer
// with the river_job schema migrated. Singleton: the container is shared
// across every integration test in the process; each test is responsible
// for cleaning up the rows it inserts.
func GetTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	once.Do(func() {
		testContainer, testPool, initErr = setupTestContainer()
	})

	if initErr != nil {
		t.Skipf("skipping integration test: %v", initErr)
	}
	return testPool
}

func setupTestContainer() (*postgres.PostgresContainer, *pgxpool.Pool, error) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("eln_core_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("starting postgres: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		pgContainer.Terminate(ctx)
		return nil, nil, fmt.Errorf("getting connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		pgContainer.Terminate(ctx)
		return nil, nil, fmt.Errorf("creating pool: %w", err)
	}

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		pool.Close()
		pgContainer.Terminate(ctx)
		return nil, nil, fmt.Errorf("create river migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		pool.Close()
		pgContainer.Terminate(ctx)
		return nil, nil, fmt.Errorf("river migrate up: %w", err)
	}

	return pgContainer, pool, nil
}

// CleanupContainers terminates the shared container. Call from TestMain.
func CleanupContainers(ctx context.Context) {
	if testPool != nil {
		testPool.Close()
	}
	if testContainer != nil {
		testContainer.Terminate(ctx)
	}
}
