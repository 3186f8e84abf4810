package core

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-webflow/oauth"
	"github.com/goliatone/go-webflow/webhooks"
)

// Service is the application facade: install flow, webhook provisioning,
// and delivery authorization for one configured platform app.
type Service struct {
	config            Config
	logger            Logger
	loggerProvider    LoggerProvider
	metricsRecorder   MetricsRecorder
	errorFactory      ErrorFactory
	errorMapper       ErrorMapper
	configProvider    ConfigProvider
	optionsResolver   OptionsResolver
	persistenceClient any
	stateStore        InstallStateStore
	credentialStore   CredentialStore
	platform          PlatformAPI
	exchanger         TokenExchanger
	verifier          DeliveryVerifier
}

type ServiceDependencies struct {
	Logger            Logger
	LoggerProvider    LoggerProvider
	MetricsRecorder   MetricsRecorder
	ErrorFactory      ErrorFactory
	ErrorMapper       ErrorMapper
	ConfigProvider    ConfigProvider
	OptionsResolver   OptionsResolver
	PersistenceClient any
	InstallStateStore InstallStateStore
	CredentialStore   CredentialStore
	PlatformAPI       PlatformAPI
	TokenExchanger    TokenExchanger
	DeliveryVerifier  DeliveryVerifier
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("webflow", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("webflow"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.stateStore == nil {
		builder.stateStore = NewMemoryInstallStateStore(defaultInstallStateTTL)
	}
	if builder.verifier == nil {
		builder.verifier = webhooks.NewSignatureVerifier()
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if builder.credentialStore == nil && builder.storeFactory != nil {
		store, buildErr := builder.storeFactory.BuildCredentialStore(builder.persistenceClient)
		if buildErr != nil {
			return nil, mapBuildError(builder.errorMapper, buildErr)
		}
		builder.credentialStore = store
	}

	if builder.exchanger == nil {
		if strings.TrimSpace(finalConfig.OAuth.ClientID) == "" || strings.TrimSpace(finalConfig.OAuth.ClientSecret) == "" {
			return nil, ensureAppErrorEnvelope(
				goerrors.New("core: oauth.client_id and oauth.client_secret are required", goerrors.CategoryValidation).
					WithTextCode(AppErrorConfigInvalid),
			)
		}
		flow, flowErr := oauth.NewAuthorizationCodeFlow(oauth.FlowConfig{
			ClientID:      finalConfig.OAuth.ClientID,
			ClientSecret:  finalConfig.OAuth.ClientSecret,
			AuthorizeHost: finalConfig.OAuth.AuthorizeHost,
			TokenHost:     finalConfig.OAuth.TokenHost,
		})
		if flowErr != nil {
			return nil, mapBuildError(builder.errorMapper, flowErr)
		}
		builder.exchanger = oauthTokenExchanger{flow: flow}
	}

	return &Service{
		config:            finalConfig,
		logger:            logger,
		loggerProvider:    provider,
		metricsRecorder:   builder.metricsRecorder,
		errorFactory:      builder.errorFactory,
		errorMapper:       builder.errorMapper,
		configProvider:    builder.configProvider,
		optionsResolver:   builder.optionsResolver,
		persistenceClient: builder.persistenceClient,
		stateStore:        builder.stateStore,
		credentialStore:   builder.credentialStore,
		platform:          builder.platform,
		exchanger:         builder.exchanger,
		verifier:          builder.verifier,
	}, nil
}

func Setup(cfg Config, options ...Option) (*Service, error) {
	return NewService(cfg, options...)
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:            s.logger,
		LoggerProvider:    s.loggerProvider,
		MetricsRecorder:   s.metricsRecorder,
		ErrorFactory:      s.errorFactory,
		ErrorMapper:       s.errorMapper,
		ConfigProvider:    s.configProvider,
		OptionsResolver:   s.optionsResolver,
		PersistenceClient: s.persistenceClient,
		InstallStateStore: s.stateStore,
		CredentialStore:   s.credentialStore,
		PlatformAPI:       s.platform,
		TokenExchanger:    s.exchanger,
		DeliveryVerifier:  s.verifier,
	}
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

// oauthTokenExchanger adapts the oauth package flow to the TokenExchanger
// contract.
type oauthTokenExchanger struct {
	flow *oauth.AuthorizationCodeFlow
}

func (a oauthTokenExchanger) InstallURL(req InstallURLRequest) (string, error) {
	return a.flow.InstallURL(oauth.InstallURLOptions{
		RedirectURI: req.RedirectURI,
		Scope:       req.Scope,
		State:       req.State,
	})
}

func (a oauthTokenExchanger) Exchange(ctx context.Context, code string) (string, error) {
	return a.flow.Exchange(ctx, code)
}
