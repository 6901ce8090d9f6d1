package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrations.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "00001_report_history.sql", entries[0].Name())
}

func TestRunMigrationsLeavesPoolUsable(t *testing.T) {
	url := os.Getenv("POSTGRES_URL")
	if url == "" {
		t.Skip("POSTGRES_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := Connect(ctx, url)
	require.NoError(t, err)
	defer pool.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, Migrate(ctx, pool))
	}
	require.NoError(t, RunMigrations(ctx, pool, "status"))
	require.NoError(t, pool.Ping(ctx))

	var n int
	require.NoError(t, pool.QueryRow(ctx, "SELECT count(*) FROM report_history").Scan(&n))
}
