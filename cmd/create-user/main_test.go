package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertUser_UnknownDriverFromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")

	storeDriver := firstNonEmpty("", os.Getenv("STORE_DRIVER"), "postgres")
	err := insertUser(context.Background(), storeDriver, "", nil)

	require.Error(t, err)
	assert.Equal(t, `unknown driver "mongo"`, err.Error())
}

func TestInsertUser_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`CREATE TABLE users (
		id TEXT PRIMARY KEY, name TEXT NOT NULL UNIQUE, role TEXT NOT NULL DEFAULT '',
		max_calories_per_day INTEGER, password TEXT NOT NULL, created_at TIMESTAMP NOT NULL)`)
	require.NoError(t, err)

	args := []any{"u1", "alice", "", 1800, "hash", time.Now().UTC()}
	require.NoError(t, insertUser(context.Background(), "sqlite", path, args))

	var name string
	var limit int
	require.NoError(t, db.QueryRow(`SELECT name, max_calories_per_day FROM users WHERE id = 'u1'`).Scan(&name, &limit))
	assert.Equal(t, "alice", name)
	assert.Equal(t, 1800, limit)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "sqlite", firstNonEmpty("sqlite", "postgres"))
	assert.Equal(t, "postgres", firstNonEmpty("", "", "postgres"))
	assert.Equal(t, "", firstNonEmpty())
}
