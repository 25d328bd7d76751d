package repomanager

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteManager_MigratesAndServesUsers(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	m := NewSQLiteRepositoryManager()
	ctx := context.Background()
	require.NoError(t, m.RunMigrations(ctx, db))
	require.NoError(t, m.RunMigrations(ctx, db), "schema init must be idempotent")

	repo := m.Users(db)
	_, ok := repo.(*users.SQLiteRepository)
	require.True(t, ok)

	created, err := repo.Create(ctx, "a@x.io", "hash", "Alice")
	require.NoError(t, err)
	found, err := repo.FindByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestSQLiteManager_ClosedDB(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	err = NewSQLiteRepositoryManager().RunMigrations(context.Background(), db)
	assert.Error(t, err)
}
