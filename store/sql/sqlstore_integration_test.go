package sqlstore_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"testing"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-webflow/core"
	"github.com/goliatone/go-webflow/migrations"
	sqlstore "github.com/goliatone/go-webflow/store/sql"
)

type testPersistenceConfig struct {
	driver string
	server string
}

func (c testPersistenceConfig) GetDebug() bool {
	return false
}

func (c testPersistenceConfig) GetDriver() string {
	return c.driver
}

func (c testPersistenceConfig) GetServer() string {
	return c.server
}

func (c testPersistenceConfig) GetPingTimeout() time.Duration {
	return time.Second
}

func (c testPersistenceConfig) GetOtelIdentifier() string {
	return "go-webflow-tests"
}

func TestMigrationSmokeApplySQLite(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	var tableName string
	if err := client.DB().NewRaw(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
		"webflow_site_credentials",
	).Scan(context.Background(), &tableName); err != nil {
		t.Fatalf("query sqlite master: %v", err)
	}
	if tableName != "webflow_site_credentials" {
		t.Fatalf("expected webflow_site_credentials table, got %q", tableName)
	}
}

func TestCredentialStore_PutGetDeleteRoundtrip(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.CredentialStore()
	if store == nil {
		t.Fatalf("expected credential store from factory")
	}

	if _, err := store.Get(ctx, "site-1"); !errors.Is(err, core.ErrCredentialNotFound) {
		t.Fatalf("expected ErrCredentialNotFound for missing site, got %v", err)
	}

	if err := store.Put(ctx, core.SiteCredential{SiteID: "site-1", AccessToken: "tok-a"}); err != nil {
		t.Fatalf("put credential: %v", err)
	}
	credential, err := store.Get(ctx, "site-1")
	if err != nil {
		t.Fatalf("get credential: %v", err)
	}
	if credential.AccessToken != "tok-a" {
		t.Fatalf("unexpected token %q", credential.AccessToken)
	}

	if err := store.Delete(ctx, "site-1"); err != nil {
		t.Fatalf("delete credential: %v", err)
	}
	if _, err := store.Get(ctx, "site-1"); !errors.Is(err, core.ErrCredentialNotFound) {
		t.Fatalf("expected ErrCredentialNotFound after delete, got %v", err)
	}
}

func TestCredentialStore_ReinstallOverwritesToken(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.CredentialStore()

	if err := store.Put(ctx, core.SiteCredential{SiteID: "site-1", AccessToken: "tok-old"}); err != nil {
		t.Fatalf("put first credential: %v", err)
	}
	if err := store.Put(ctx, core.SiteCredential{SiteID: "site-1", AccessToken: "tok-new"}); err != nil {
		t.Fatalf("put replacement credential: %v", err)
	}

	credential, err := store.Get(ctx, "site-1")
	if err != nil {
		t.Fatalf("get credential: %v", err)
	}
	if credential.AccessToken != "tok-new" {
		t.Fatalf("expected latest token to win, got %q", credential.AccessToken)
	}

	credentials, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list credentials: %v", err)
	}
	if len(credentials) != 1 {
		t.Fatalf("expected 1 credential row after reinstall, got %d", len(credentials))
	}
}

func TestCredentialStore_ValidatesInput(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.CredentialStore()

	if err := store.Put(ctx, core.SiteCredential{SiteID: " ", AccessToken: "tok"}); err == nil {
		t.Fatalf("expected missing site id error")
	}
	if err := store.Put(ctx, core.SiteCredential{SiteID: "site-1", AccessToken: " "}); err == nil {
		t.Fatalf("expected missing token error")
	}
	if _, err := store.Get(ctx, "  "); err == nil {
		t.Fatalf("expected missing site id error on get")
	}
}

func TestCachedCredentialStore_InvalidatesOnPut(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}

	cacheConfig := repositorycache.DefaultConfig()
	cacheConfig.TTL = time.Minute
	cacheService, err := repositorycache.NewCacheService(cacheConfig)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}

	cached, err := sqlstore.NewCachedCredentialStore(factory.CredentialStore(), cacheService)
	if err != nil {
		t.Fatalf("new cached credential store: %v", err)
	}

	if err := cached.Put(ctx, core.SiteCredential{SiteID: "site-1", AccessToken: "tok-a"}); err != nil {
		t.Fatalf("put credential: %v", err)
	}
	first, err := cached.Get(ctx, "site-1")
	if err != nil {
		t.Fatalf("get credential: %v", err)
	}
	if first.AccessToken != "tok-a" {
		t.Fatalf("unexpected token %q", first.AccessToken)
	}

	// A write through the cached store must be visible on the next read.
	if err := cached.Put(ctx, core.SiteCredential{SiteID: "site-1", AccessToken: "tok-b"}); err != nil {
		t.Fatalf("put replacement credential: %v", err)
	}
	second, err := cached.Get(ctx, "site-1")
	if err != nil {
		t.Fatalf("get replacement credential: %v", err)
	}
	if second.AccessToken != "tok-b" {
		t.Fatalf("expected invalidated cache to serve tok-b, got %q", second.AccessToken)
	}
}

func newSQLiteClient(t *testing.T) (*persistence.Client, func()) {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:webflow-test-%d?mode=memory&cache=shared&_foreign_keys=on",
		time.Now().UnixNano(),
	)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := testPersistenceConfig{
		driver: "sqlite3",
		server: dsn,
	}
	client, err := persistence.New(cfg, sqlDB, sqlitedialect.New())
	if err != nil {
		_ = sqlDB.Close()
		t.Fatalf("new persistence client: %v", err)
	}

	ctx := context.Background()
	_, err = migrations.Register(ctx, func(_ context.Context, dialect string, _ string, fsys fs.FS) error {
		if dialect != migrations.DialectSQLite {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		return nil
	}, migrations.WithValidationTargets(migrations.DialectSQLite))
	if err != nil {
		_ = client.Close()
		t.Fatalf("register migrations: %v", err)
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		t.Fatalf("migrate: %v", err)
	}

	return client, func() {
		if err := client.Close(); err != nil {
			t.Errorf("close persistence client: %v", err)
		}
	}
}
