// Package webflow wires an installable platform integration: the OAuth
// install flow, webhook provisioning across sites, durable site
// credentials, and signed delivery verification.
package webflow

import "github.com/goliatone/go-webflow/core"

type Config = core.Config
type OAuthConfig = core.OAuthConfig
type WebhookConfig = core.WebhookConfig
type StorageConfig = core.StorageConfig

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies
type CredentialStore = core.CredentialStore
type CredentialStoreFactory = core.CredentialStoreFactory
type PlatformAPI = core.PlatformAPI
type TokenExchanger = core.TokenExchanger
type DeliveryVerifier = core.DeliveryVerifier
type InstallStateStore = core.InstallStateStore
type MetricsRecorder = core.MetricsRecorder

type Site = core.Site
type Webhook = core.Webhook
type SiteCredential = core.SiteCredential
type Delivery = core.Delivery

type InstallURLRequest = core.InstallURLRequest
type InstallRequest = core.InstallRequest
type InstallResult = core.InstallResult
type BeginInstallResponse = core.BeginInstallResponse
type ProvisionReport = core.ProvisionReport
type ProvisionedSite = core.ProvisionedSite
type ProvisionFailure = core.ProvisionFailure

var (
	WithLogger                 = core.WithLogger
	WithLoggerProvider         = core.WithLoggerProvider
	WithMetricsRecorder        = core.WithMetricsRecorder
	WithErrorFactory           = core.WithErrorFactory
	WithErrorMapper            = core.WithErrorMapper
	WithConfigProvider         = core.WithConfigProvider
	WithOptionsResolver        = core.WithOptionsResolver
	WithPersistenceClient      = core.WithPersistenceClient
	WithCredentialStoreFactory = core.WithCredentialStoreFactory
	WithInstallStateStore      = core.WithInstallStateStore
	WithCredentialStore        = core.WithCredentialStore
	WithPlatformAPI            = core.WithPlatformAPI
	WithTokenExchanger         = core.WithTokenExchanger
	WithDeliveryVerifier       = core.WithDeliveryVerifier
)

// ErrCredentialNotFound reports a site without a stored access token.
var ErrCredentialNotFound = core.ErrCredentialNotFound

func DefaultConfig() Config {
	return core.DefaultConfig()
}

// New builds the integration service from runtime overrides and options.
func New(cfg Config, options ...Option) (*Service, error) {
	return core.NewService(cfg, options...)
}

// Setup is a readable alias for New in composition roots.
func Setup(cfg Config, options ...Option) (*Service, error) {
	return core.Setup(cfg, options...)
}
