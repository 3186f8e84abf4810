package core

import (
	"context"

	glog "github.com/goliatone/go-logger/glog"
)

// CredentialStore persists the site to access-token binding created during
// installation. Get returns ErrCredentialNotFound when no binding exists.
type CredentialStore interface {
	Put(ctx context.Context, credential SiteCredential) error
	Get(ctx context.Context, siteID string) (SiteCredential, error)
	List(ctx context.Context) ([]SiteCredential, error)
	Delete(ctx context.Context, siteID string) error
}

// CreateWebhookRequest describes one webhook subscription to provision.
type CreateWebhookRequest struct {
	TriggerType string
	URL         string
}

// PlatformAPI is the authenticated surface of the platform REST API used
// during provisioning.
type PlatformAPI interface {
	Sites(ctx context.Context, token string) ([]Site, error)
	ListWebhooks(ctx context.Context, token string, siteID string) ([]Webhook, error)
	CreateWebhook(ctx context.Context, token string, siteID string, req CreateWebhookRequest) (Webhook, error)
}

// InstallURLRequest carries the consent URL parameters for one install.
type InstallURLRequest struct {
	RedirectURI string
	Scope       []string
	State       string
}

// TokenExchanger builds consent URLs and performs the single-use
// authorization-code exchange.
type TokenExchanger interface {
	InstallURL(req InstallURLRequest) (string, error)
	Exchange(ctx context.Context, code string) (string, error)
}

// DeliveryVerifier checks the signature and freshness of one inbound
// delivery against the shared secret.
type DeliveryVerifier interface {
	Verify(signature string, timestamp string, body []byte, secret string) error
}

// InstallStateStore tracks outstanding consent states so callbacks can be
// tied back to the install that started them. Consume is single-use.
type InstallStateStore interface {
	Save(ctx context.Context, record InstallStateRecord) error
	Consume(ctx context.Context, state string) (InstallStateRecord, error)
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
