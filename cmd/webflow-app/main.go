package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"

	"github.com/goliatone/go-webflow/core"
	"github.com/goliatone/go-webflow/inbound"
	"github.com/goliatone/go-webflow/migrations"
	"github.com/goliatone/go-webflow/platform"
	sqlstore "github.com/goliatone/go-webflow/store/sql"
)

const (
	defaultPort           = "3000"
	defaultCacheTTL       = 5 * time.Minute
	shutdownTimeout       = 10 * time.Second
	readHeaderTimeout     = 10 * time.Second
	pingTimeout           = 5 * time.Second
	otelServiceIdentifier = "webflow-app"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "webflow-app: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	provider, logger := glog.Resolve("webflow-app", nil, nil)
	logger = glog.Ensure(logger)

	loader := envConfigLoader{}
	configProvider := core.NewCfgxConfigProvider(loader)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := configProvider.Load(ctx, core.DefaultConfig())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if strings.TrimSpace(cfg.OAuth.ClientID) == "" || strings.TrimSpace(cfg.OAuth.ClientSecret) == "" {
		return fmt.Errorf("WEBFLOW_CLIENT_ID and WEBFLOW_CLIENT_SECRET are required")
	}

	client, err := openPersistence(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			logger.Error("close persistence client", "error", closeErr.Error())
		}
	}()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		return fmt.Errorf("build repository factory: %w", err)
	}

	store, err := buildCredentialStore(factory)
	if err != nil {
		return err
	}

	service, err := core.NewService(core.Config{},
		core.WithLogger(logger),
		core.WithLoggerProvider(provider),
		core.WithConfigProvider(configProvider),
		core.WithCredentialStore(store),
		core.WithPlatformAPI(platform.NewClient(cfg.APIHost, nil)),
	)
	if err != nil {
		return fmt.Errorf("build service: %w", err)
	}

	resolved := service.Config()
	install := inbound.NewInstallHandler(service,
		inbound.WithRedirectURI(resolved.OAuth.RedirectURI),
		inbound.WithInstallLogger(logger),
	)
	webhook := inbound.NewWebhookHandler(service,
		inbound.WithWebhookLogger(logger),
	)

	server := &http.Server{
		Addr:              ":" + envString("PORT", defaultPort),
		Handler:           inbound.NewRouter(install, webhook),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", server.Addr)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openPersistence(ctx context.Context, storage core.StorageConfig) (*persistence.Client, error) {
	driver := strings.TrimSpace(storage.Driver)
	if driver == "" {
		driver = "sqlite3"
	}

	var dialect schema.Dialect
	switch driver {
	case "sqlite3":
		dialect = sqlitedialect.New()
	case "postgres":
		dialect = pgdialect.New()
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}

	sqlDB, err := sql.Open(driver, storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if driver == "sqlite3" {
		sqlDB.SetMaxOpenConns(1)
	}

	client, err := persistence.New(persistenceConfig{driver: driver, server: storage.DSN}, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("new persistence client: %w", err)
	}

	migrationDialect := migrations.DialectSQLite
	if driver == "postgres" {
		migrationDialect = migrations.DialectPostgres
	}
	_, err = migrations.Register(ctx, func(_ context.Context, dialect string, _ string, fsys fs.FS) error {
		if dialect != migrationDialect {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		return nil
	}, migrations.WithValidationTargets(migrationDialect))
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("register migrations: %w", err)
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return client, nil
}

func buildCredentialStore(factory *sqlstore.RepositoryFactory) (core.CredentialStore, error) {
	base := factory.CredentialStore()

	ttl := defaultCacheTTL
	if raw := strings.TrimSpace(os.Getenv("WEBFLOW_CACHE_TTL")); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parse WEBFLOW_CACHE_TTL: %w", err)
		}
		if parsed <= 0 {
			return base, nil
		}
		ttl = parsed
	}

	cacheConfig := repositorycache.DefaultConfig()
	cacheConfig.TTL = ttl
	cacheService, err := repositorycache.NewCacheService(cacheConfig)
	if err != nil {
		return nil, fmt.Errorf("new cache service: %w", err)
	}
	return sqlstore.NewCachedCredentialStore(base, cacheService)
}

type persistenceConfig struct {
	driver string
	server string
}

func (c persistenceConfig) GetDebug() bool                { return false }
func (c persistenceConfig) GetDriver() string             { return c.driver }
func (c persistenceConfig) GetServer() string             { return c.server }
func (c persistenceConfig) GetPingTimeout() time.Duration { return pingTimeout }
func (c persistenceConfig) GetOtelIdentifier() string     { return otelServiceIdentifier }

// envConfigLoader maps process environment variables into the nested raw
// config shape the service expects.
type envConfigLoader struct{}

func (envConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	raw := map[string]any{}
	setIfPresent(raw, "app_name", os.Getenv("APP_NAME"))
	setIfPresent(raw, "api_host", os.Getenv("WEBFLOW_API_HOST"))

	oauth := map[string]any{}
	setIfPresent(oauth, "client_id", os.Getenv("WEBFLOW_CLIENT_ID"))
	setIfPresent(oauth, "client_secret", os.Getenv("WEBFLOW_CLIENT_SECRET"))
	setIfPresent(oauth, "authorize_host", os.Getenv("WEBFLOW_AUTHORIZE_HOST"))
	setIfPresent(oauth, "token_host", os.Getenv("WEBFLOW_TOKEN_HOST"))
	if scopes := splitList(os.Getenv("WEBFLOW_SCOPES")); len(scopes) > 0 {
		oauth["scopes"] = scopes
	}

	webhook := map[string]any{}
	setIfPresent(webhook, "secret", os.Getenv("WEBFLOW_WEBHOOK_SECRET"))
	setIfPresent(webhook, "trigger_type", os.Getenv("WEBFLOW_TRIGGER_TYPE"))

	if publicURL := strings.TrimSpace(os.Getenv("WEBFLOW_PUBLIC_URL")); publicURL != "" {
		base := strings.TrimRight(publicURL, "/")
		oauth["redirect_uri"] = base + "/"
		webhook["url"] = base + "/webhook"
	}

	if len(oauth) > 0 {
		raw["oauth"] = oauth
	}
	if len(webhook) > 0 {
		raw["webhook"] = webhook
	}

	storage := map[string]any{}
	setIfPresent(storage, "driver", os.Getenv("DATABASE_DRIVER"))
	setIfPresent(storage, "dsn", os.Getenv("DATABASE_DSN"))
	if len(storage) > 0 {
		raw["storage"] = storage
	}

	return raw, nil
}

func setIfPresent(target map[string]any, key string, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		target[key] = trimmed
	}
}

func splitList(value string) []string {
	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' '
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func envString(key string, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
