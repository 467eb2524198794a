package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunMigrationsWithoutPool(t *testing.T) {
	n, err := RunMigrations(context.Background(), nil, "../../migrations", zap.NewNop())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRunMigrationsIsRepeatable(t *testing.T) {
	dsn := os.Getenv("CLINIC_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("CLINIC_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	_, err = RunMigrations(ctx, pool, "../../migrations", zap.NewNop())
	require.NoError(t, err)

	again, err := RunMigrations(ctx, pool, "../../migrations", zap.NewNop())
	require.NoError(t, err)
	assert.Zero(t, again)

	var recorded int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM schema_migrations`).Scan(&recorded))
	assert.GreaterOrEqual(t, recorded, 3)
}

func TestRunMigrationsMissingDir(t *testing.T) {
	dsn := os.Getenv("CLINIC_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("CLINIC_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	_, err = RunMigrations(ctx, pool, "does-not-exist", zap.NewNop())
	assert.Error(t, err)
}

func TestMigrationFilesSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_b.sql", "README.md", "0001_a.sql"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "0000_dir.sql"), 0o700))

	files, err := migrationFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_a.sql", "0002_b.sql"}, files)
}
