package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
)

type ErrorFactory func(message string, category ...goerrors.Category) *goerrors.Error

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

// CredentialStoreFactory builds the durable credential store from an opaque
// persistence client when no store was injected directly.
type CredentialStoreFactory interface {
	BuildCredentialStore(persistenceClient any) (CredentialStore, error)
}

type serviceBuilder struct {
	runtimeConfig     Config
	logger            Logger
	loggerProvider    LoggerProvider
	metricsRecorder   MetricsRecorder
	errorFactory      ErrorFactory
	errorMapper       ErrorMapper
	configProvider    ConfigProvider
	optionsResolver   OptionsResolver
	persistenceClient any
	storeFactory      CredentialStoreFactory
	stateStore        InstallStateStore
	credentialStore   CredentialStore
	platform          PlatformAPI
	exchanger         TokenExchanger
	verifier          DeliveryVerifier
}

type Option func(*serviceBuilder)

func WithLogger(logger Logger) Option {
	return func(b *serviceBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *serviceBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *serviceBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithErrorFactory(factory ErrorFactory) Option {
	return func(b *serviceBuilder) {
		b.errorFactory = factory
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *serviceBuilder) {
		b.errorMapper = mapper
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *serviceBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *serviceBuilder) {
		b.optionsResolver = resolver
	}
}

func WithPersistenceClient(client any) Option {
	return func(b *serviceBuilder) {
		b.persistenceClient = client
	}
}

func WithCredentialStoreFactory(factory CredentialStoreFactory) Option {
	return func(b *serviceBuilder) {
		b.storeFactory = factory
	}
}

func WithInstallStateStore(store InstallStateStore) Option {
	return func(b *serviceBuilder) {
		b.stateStore = store
	}
}

func WithCredentialStore(store CredentialStore) Option {
	return func(b *serviceBuilder) {
		b.credentialStore = store
	}
}

func WithPlatformAPI(platform PlatformAPI) Option {
	return func(b *serviceBuilder) {
		b.platform = platform
	}
}

func WithTokenExchanger(exchanger TokenExchanger) Option {
	return func(b *serviceBuilder) {
		b.exchanger = exchanger
	}
}

func WithDeliveryVerifier(verifier DeliveryVerifier) Option {
	return func(b *serviceBuilder) {
		b.verifier = verifier
	}
}

func defaultServiceBuilder(runtime Config) serviceBuilder {
	loggerProvider, logger := glog.Resolve("webflow", nil, nil)
	return serviceBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		metricsRecorder: NopMetricsRecorder{},
		errorFactory:    goerrors.New,
		errorMapper:     defaultErrorMapper,
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
	}
}

func defaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	return appErrorMapper(err)
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.AppName) != "" {
		layer["app_name"] = cfg.AppName
	}
	if includeZero || strings.TrimSpace(cfg.APIHost) != "" {
		layer["api_host"] = cfg.APIHost
	}

	oauth := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.OAuth.ClientID) != "" {
		oauth["client_id"] = cfg.OAuth.ClientID
	}
	if includeZero || strings.TrimSpace(cfg.OAuth.ClientSecret) != "" {
		oauth["client_secret"] = cfg.OAuth.ClientSecret
	}
	if includeZero || strings.TrimSpace(cfg.OAuth.RedirectURI) != "" {
		oauth["redirect_uri"] = cfg.OAuth.RedirectURI
	}
	if includeZero || len(cfg.OAuth.Scopes) > 0 {
		oauth["scopes"] = append([]string(nil), cfg.OAuth.Scopes...)
	}
	if includeZero || strings.TrimSpace(cfg.OAuth.AuthorizeHost) != "" {
		oauth["authorize_host"] = cfg.OAuth.AuthorizeHost
	}
	if includeZero || strings.TrimSpace(cfg.OAuth.TokenHost) != "" {
		oauth["token_host"] = cfg.OAuth.TokenHost
	}
	if len(oauth) > 0 {
		layer["oauth"] = oauth
	}

	webhook := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Webhook.URL) != "" {
		webhook["url"] = cfg.Webhook.URL
	}
	if includeZero || strings.TrimSpace(cfg.Webhook.Secret) != "" {
		webhook["secret"] = cfg.Webhook.Secret
	}
	if includeZero || strings.TrimSpace(cfg.Webhook.TriggerType) != "" {
		webhook["trigger_type"] = cfg.Webhook.TriggerType
	}
	if len(webhook) > 0 {
		layer["webhook"] = webhook
	}

	storage := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Storage.Driver) != "" {
		storage["driver"] = cfg.Storage.Driver
	}
	if includeZero || strings.TrimSpace(cfg.Storage.DSN) != "" {
		storage["dsn"] = cfg.Storage.DSN
	}
	if len(storage) > 0 {
		layer["storage"] = storage
	}

	return layer
}
