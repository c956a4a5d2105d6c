package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/xxxsen/wpmigrate/internal/config"
	"github.com/xxxsen/wpmigrate/internal/db"
)

// OpenTestDB connects to the postgres named by TEST_DB_HOST, migrates it and
// empties every table. The test is skipped when the variable is unset.
func OpenTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping postgres test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	conn, err := db.Open(ctx, config.DatabaseConfig{
		Host:            host,
		Port:            5432,
		User:            envOr("TEST_DB_USER", "wpmigrate"),
		Password:        envOr("TEST_DB_PASSWORD", "wpmigrate_pass"),
		DBName:          envOr("TEST_DB_NAME", "wpmigrate_test"),
		SSLMode:         "disable",
		MaxRetrySeconds: 10,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	if _, err := conn.Exec(`TRUNCATE comments, post_categories, post_tags, posts, pages, media, categories, tags, users CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return conn, func() {
		_ = conn.Close()
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
