package testutil_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourdesk/tourdesk/migrations"
	"github.com/tourdesk/tourdesk/testutil"
)

var tables = []string{"master_entities", "tours"}

// TestMigrations applies every migration from a clean database, checks the
// tables and their constraints, then rolls everything back. Other packages'
// TestMain may already have migrated the shared database, so it starts with a
// reset to version 0 and ends by re-applying the schema.
func TestMigrations(t *testing.T) {
	db := testutil.NewSQLDB(t)
	ctx := context.Background()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	require.NoError(t, err, "create goose provider")

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "initial reset")
	t.Cleanup(func() { _, _ = provider.Up(context.Background()) })

	results, err := provider.Up(ctx)
	require.NoError(t, err, "goose up")
	assert.Len(t, results, len(tables))
	for _, table := range tables {
		assert.True(t, tableExists(t, db, table), "table %q after up", table)
	}

	t.Run("master status constraint", func(t *testing.T) {
		_, err := db.ExecContext(ctx,
			`INSERT INTO master_entities (kind, name, status) VALUES ('guides', 'x', 'archived')`)
		assert.Error(t, err)
	})

	t.Run("negative guest counts rejected", func(t *testing.T) {
		_, err := db.ExecContext(ctx,
			`INSERT INTO tours (code, start_date, adults) VALUES ('T-1', '2025-01-01', -1)`)
		assert.Error(t, err)
	})

	t.Run("line item collections default to empty arrays", func(t *testing.T) {
		var meals string
		err := db.QueryRowContext(ctx,
			`INSERT INTO tours (code, start_date) VALUES ('T-2', '2025-01-01') RETURNING meals::text`).Scan(&meals)
		require.NoError(t, err)
		assert.Equal(t, "[]", meals)
		_, err = db.ExecContext(ctx, `DELETE FROM tours WHERE code = 'T-2'`)
		require.NoError(t, err)
	})

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "goose down-to 0")
	for _, table := range tables {
		assert.False(t, tableExists(t, db, table), "table %q after down", table)
	}
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)`
	var exists bool
	require.NoError(t, db.QueryRowContext(context.Background(), q, table).Scan(&exists))
	return exists
}
