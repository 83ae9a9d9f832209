package app

import (
	"context"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/checkout/internal/storage/sqlite"
)

func TestInitRuntimeDependencies_Memory(t *testing.T) {
	t.Parallel()

	deps, err := initRuntimeDependencies(context.Background(), Config{
		StorageDriver: StorageDriverMemory,
	}, log.WithField("test", "memory-storage"))
	require.NoError(t, err)
	require.NotNil(t, deps.repo)
	require.NoError(t, deps.pinger.Ping(context.Background()))
	require.NoError(t, deps.closeFn())
}

func TestInitRuntimeDependencies_SQLite(t *testing.T) {
	t.Parallel()

	for _, path := range []string{sqlite.MemoryPath, filepath.Join(t.TempDir(), "orders.db")} {
		deps, err := initRuntimeDependencies(context.Background(), Config{
			StorageDriver: StorageDriverSQLite,
			SQLitePath:    path,
			AutoMigrate:   true,
		}, log.WithField("test", "sqlite-storage"))
		require.NoError(t, err, path)

		orders, err := deps.repo.FindAll(context.Background())
		require.NoError(t, err, "schema should be migrated for %s", path)
		require.Empty(t, orders)
		require.NoError(t, deps.pinger.Ping(context.Background()))
		require.NoError(t, deps.closeFn())
	}
}

func TestInitRuntimeDependencies_PostgresRequiresDSN(t *testing.T) {
	t.Parallel()

	_, err := initRuntimeDependencies(context.Background(), Config{
		StorageDriver: StorageDriverPostgres,
	}, log.WithField("test", "postgres-missing-dsn"))
	require.Error(t, err)
}

func TestInitRuntimeDependencies_UnsupportedDriver(t *testing.T) {
	t.Parallel()

	_, err := initRuntimeDependencies(context.Background(), Config{
		StorageDriver: "mongo",
	}, log.WithField("test", "unsupported-driver"))
	require.Error(t, err)
}

func TestInitKafkaProducer_NoBrokers(t *testing.T) {
	require.Nil(t, initKafkaProducer(nil, log.WithField("test", "kafka")))
	// closeKafka безопасен для nil.
	closeKafka(nil, log.WithField("test", "kafka"))
}
