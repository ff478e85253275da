package db_test

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	dbfs "github.com/garnizeh/assessboard/db"
	"github.com/garnizeh/assessboard/internal/db"
)

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()

	d, err := db.New(ctx, filepath.Join(t.TempDir(), "migrate.db"), nil)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer d.Close()

	if err := db.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if err := db.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}

	var count int
	if err := d.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("scan schema_migrations count: %v", err)
	}
	if count < 1 {
		t.Fatalf("expected at least 1 migration recorded, got %d", count)
	}

	for _, table := range []string{"employees", "users"} {
		var name string
		if err := d.QueryRow(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name); err != nil {
			t.Fatalf("expected %s table exists: %v", table, err)
		}
	}
}

func TestMigrate_OrderAndFailure(t *testing.T) {
	ctx := context.Background()

	d, err := db.New(ctx, filepath.Join(t.TempDir(), "order.db"), nil)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer d.Close()

	fsys := fstest.MapFS{
		"migrations/0002_add.sql":  {Data: []byte(`ALTER TABLE t ADD COLUMN extra TEXT;`)},
		"migrations/0001_base.sql": {Data: []byte(`CREATE TABLE t (id INTEGER);`)},
		"migrations/README.md":     {Data: []byte(`ignored`)},
	}
	if err := db.Migrate(ctx, d, fsys); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	bad := fstest.MapFS{
		"migrations/0003_bad.sql": {Data: []byte(`NOT SQL AT ALL`)},
	}
	if err := db.Migrate(ctx, d, bad); err == nil {
		t.Fatalf("expected error for broken migration")
	}

	if err := db.Migrate(ctx, d, fstest.MapFS{}); err == nil {
		t.Fatalf("expected error when migrations dir is missing")
	}
}
