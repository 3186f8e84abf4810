package migrations

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	webflow "github.com/goliatone/go-webflow"
	_ "github.com/mattn/go-sqlite3"
)

func TestFilesystems_ReturnsPostgresAndSQLite(t *testing.T) {
	filesystems, err := Filesystems()
	if err != nil {
		t.Fatalf("filesystems: %v", err)
	}
	if len(filesystems) != 2 {
		t.Fatalf("expected 2 filesystems, got %d", len(filesystems))
	}

	var postgresFound bool
	var sqliteFound bool
	for _, entry := range filesystems {
		matches, globErr := fs.Glob(entry.FS, "*.up.sql")
		if globErr != nil {
			t.Fatalf("glob %s: %v", entry.Dialect, globErr)
		}
		if len(matches) == 0 {
			t.Fatalf("expected %s migration files, got none", entry.Dialect)
		}
		switch entry.Dialect {
		case DialectPostgres:
			postgresFound = true
		case DialectSQLite:
			sqliteFound = true
		}
	}

	if !postgresFound {
		t.Fatalf("expected postgres filesystem")
	}
	if !sqliteFound {
		t.Fatalf("expected sqlite filesystem")
	}
}

func TestRegister_UsesValidationTargets(t *testing.T) {
	var calls []string
	_, err := Register(context.Background(), func(_ context.Context, dialect string, _ string, _ fs.FS) error {
		calls = append(calls, dialect)
		return nil
	}, WithValidationTargets(DialectSQLite))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if len(calls) != 1 {
		t.Fatalf("expected 1 registration call, got %d", len(calls))
	}
	if calls[0] != DialectSQLite {
		t.Fatalf("expected sqlite registration, got %q", calls[0])
	}
}

func TestSiteCredentialMigrationPair_ExistsForBothDialects(t *testing.T) {
	root := webflow.GetMigrationsFS()
	paths := []string{
		"data/sql/migrations/20240115000000_create_webflow_site_credentials.up.sql",
		"data/sql/migrations/20240115000000_create_webflow_site_credentials.down.sql",
		"data/sql/migrations/sqlite/20240115000000_create_webflow_site_credentials.up.sql",
		"data/sql/migrations/sqlite/20240115000000_create_webflow_site_credentials.down.sql",
	}
	for _, migrationPath := range paths {
		content, err := fs.ReadFile(root, migrationPath)
		if err != nil {
			t.Fatalf("read migration %s: %v", migrationPath, err)
		}
		if strings.TrimSpace(string(content)) == "" {
			t.Fatalf("expected migration %s to have SQL content", migrationPath)
		}
	}
}

func TestSQLiteSiteCredentialMigration_ApplyAndRollback(t *testing.T) {
	db, err := sql.Open("sqlite3", "file:migrations-site-credentials?mode=memory&cache=shared&_foreign_keys=on")
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	defer func() { _ = db.Close() }()

	root := webflow.GetMigrationsFS()
	sqliteMigrations, err := fs.Sub(root, "data/sql/migrations/sqlite")
	if err != nil {
		t.Fatalf("resolve sqlite migrations: %v", err)
	}

	if err := execSQLMigration(
		context.Background(),
		db,
		sqliteMigrations,
		"20240115000000_create_webflow_site_credentials.up.sql",
	); err != nil {
		t.Fatalf("apply migration up: %v", err)
	}

	insertStatement := `
		INSERT INTO webflow_site_credentials (id, site_id, access_token)
		VALUES (?, ?, ?)
	`
	if _, err := db.ExecContext(context.Background(), insertStatement, "cred-1", "site-1", "tok-a"); err != nil {
		t.Fatalf("insert credential: %v", err)
	}
	if _, err := db.ExecContext(context.Background(), insertStatement, "cred-2", "site-1", "tok-b"); err == nil {
		t.Fatalf("expected unique site_id violation")
	}

	if err := execSQLMigration(
		context.Background(),
		db,
		sqliteMigrations,
		"20240115000000_create_webflow_site_credentials.down.sql",
	); err != nil {
		t.Fatalf("apply migration down: %v", err)
	}

	var count int
	if err := db.QueryRowContext(
		context.Background(),
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`,
		"webflow_site_credentials",
	).Scan(&count); err != nil {
		t.Fatalf("query sqlite_master after down migration: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected webflow_site_credentials to be dropped after down migration")
	}
}

func execSQLMigration(ctx context.Context, db *sql.DB, fsys fs.FS, filename string) error {
	content, err := fs.ReadFile(fsys, filepath.Clean(filename))
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, string(content))
	return err
}
