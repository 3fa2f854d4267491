package migration

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/agenda/migrations"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestApplyAndCurrentVersion(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	runner := NewRunner(db, fstest.MapFS{
		"001_init.sql":   {Data: []byte("CREATE TABLE test (id INTEGER);")},
		"002_column.sql": {Data: []byte("ALTER TABLE test ADD COLUMN name TEXT;")},
		"README.md":      {Data: []byte("ignored")},
	})

	version, err := runner.CurrentVersion(ctx)
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0, got %d", version)
	}

	applied, err := runner.Apply(ctx)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if applied != 2 {
		t.Errorf("expected 2 migrations applied, got %d", applied)
	}

	version, _ = runner.CurrentVersion(ctx)
	if version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}

	applied, err = runner.Apply(ctx)
	if err != nil {
		t.Fatalf("second Apply failed: %v", err)
	}
	if applied != 0 {
		t.Errorf("expected nothing to apply, got %d", applied)
	}
}

func TestApplyRollsBackFailedMigration(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	runner := NewRunner(db, fstest.MapFS{
		"001_init.sql":   {Data: []byte("CREATE TABLE test (id INTEGER);")},
		"002_broken.sql": {Data: []byte("CREATE TABLE second (id INTEGER); NOT VALID SQL;")},
	})

	applied, err := runner.Apply(ctx)
	if err == nil {
		t.Fatal("expected Apply to fail")
	}
	if applied != 1 {
		t.Errorf("expected 1 migration applied before failure, got %d", applied)
	}

	version, _ := runner.CurrentVersion(ctx)
	if version != 1 {
		t.Errorf("expected version to stay at 1, got %d", version)
	}

	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='second'"); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Error("table from the failed migration survived the rollback")
	}
}

func TestReadMigrationsRejectsBadNames(t *testing.T) {
	tests := []struct {
		name  string
		files fstest.MapFS
	}{
		{name: "no underscore", files: fstest.MapFS{"001.sql": {Data: []byte("")}}},
		{name: "not a number", files: fstest.MapFS{"abc_init.sql": {Data: []byte("")}}},
		{name: "version zero", files: fstest.MapFS{"000_init.sql": {Data: []byte("")}}},
		{name: "duplicate", files: fstest.MapFS{
			"001_a.sql": {Data: []byte("")},
			"1_b.sql":   {Data: []byte("")},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewRunner(setupTestDB(t), tt.files)
			if _, err := runner.ReadMigrations(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestValidateVersionRejectsNewerSchema(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	runner := NewRunner(db, fstest.MapFS{
		"001_init.sql": {Data: []byte("CREATE TABLE test (id INTEGER);")},
	})
	if _, err := runner.Apply(ctx); err != nil {
		t.Fatal(err)
	}
	if err := runner.ValidateVersion(ctx); err != nil {
		t.Fatalf("ValidateVersion failed on a current schema: %v", err)
	}

	if _, err := db.Exec("UPDATE schema_version SET version = 9"); err != nil {
		t.Fatal(err)
	}
	if err := runner.ValidateVersion(ctx); !errors.Is(err, ErrSchemaTooNew) {
		t.Errorf("ValidateVersion() error = %v, want %v", err, ErrSchemaTooNew)
	}
	if _, err := runner.Apply(ctx); !errors.Is(err, ErrSchemaTooNew) {
		t.Errorf("Apply() error = %v, want %v", err, ErrSchemaTooNew)
	}
}

func TestEmbeddedSQLiteMigrations(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	runner := NewRunner(db, migrations.SQLite())

	if _, err := runner.Apply(ctx); err != nil {
		t.Fatalf("embedded migrations failed: %v", err)
	}
	for _, table := range []string{"series", "occurrences", "backups"} {
		var count int
		if err := db.Get(&count, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table); err != nil {
			t.Fatal(err)
		}
		if count != 1 {
			t.Errorf("table %s missing after migration", table)
		}
	}

	pg, err := NewRunner(db, migrations.Postgres()).LatestVersion()
	if err != nil {
		t.Fatal(err)
	}
	lite, _ := runner.LatestVersion()
	if pg != lite {
		t.Errorf("dialects out of step: postgres at %d, sqlite at %d", pg, lite)
	}
}
