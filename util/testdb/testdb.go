// Package testdb opens a migrated Postgres for integration tests.
package testdb

import (
	"context"
	"os"
	"testing"
	"time"

	"bagrental/migrations"
	"bagrental/util/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Open skips the test unless TEST_DATABASE_URL points at a reachable database.
// Tables are truncated before and after the test.
func Open(t *testing.T) *database.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := database.New(ctx, url)
	if err != nil {
		t.Skipf("postgres unreachable: %v", err)
	}
	require.NoError(t, migrations.Up(url))

	truncate(t, db)
	t.Cleanup(func() {
		truncate(t, db)
		db.Close()
	})
	return db
}

func truncate(t *testing.T, db *database.DB) {
	t.Helper()
	_, err := db.Pool.Exec(context.Background(),
		`TRUNCATE waitlist, reservations, newsletter_subscriptions, bags, profiles, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

// Bag inserts an available bag and returns its id.
func Bag(t *testing.T, db *database.DB, name, tier string) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := db.Pool.QueryRow(context.Background(),
		`INSERT INTO bags (name, membership_type) VALUES ($1, $2) RETURNING id`, name, tier).Scan(&id)
	require.NoError(t, err)
	return id
}

// User inserts a user without a profile row and returns its id.
func User(t *testing.T, db *database.DB, email string) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := db.Pool.QueryRow(context.Background(),
		`INSERT INTO users (email, password_hash) VALUES ($1, 'x') RETURNING id`, email).Scan(&id)
	require.NoError(t, err)
	return id
}

// Member inserts a user with an empty profile and returns its id.
func Member(t *testing.T, db *database.DB, email string) uuid.UUID {
	t.Helper()
	id := User(t, db, email)
	_, err := db.Pool.Exec(context.Background(), `INSERT INTO profiles (user_id) VALUES ($1)`, id)
	require.NoError(t, err)
	return id
}
