package core

import (
	"fmt"
	"strings"
)

type OAuthConfig struct {
	ClientID      string   `koanf:"client_id" mapstructure:"client_id"`
	ClientSecret  string   `koanf:"client_secret" mapstructure:"client_secret"`
	RedirectURI   string   `koanf:"redirect_uri" mapstructure:"redirect_uri"`
	Scopes        []string `koanf:"scopes" mapstructure:"scopes"`
	AuthorizeHost string   `koanf:"authorize_host" mapstructure:"authorize_host"`
	TokenHost     string   `koanf:"token_host" mapstructure:"token_host"`
}

type WebhookConfig struct {
	// URL is the public callback endpoint registered on each site.
	URL string `koanf:"url" mapstructure:"url"`
	// Secret verifies inbound deliveries. Empty means the OAuth client
	// secret doubles as the signing secret.
	Secret      string `koanf:"secret" mapstructure:"secret"`
	TriggerType string `koanf:"trigger_type" mapstructure:"trigger_type"`
}

type StorageConfig struct {
	Driver string `koanf:"driver" mapstructure:"driver"`
	DSN    string `koanf:"dsn" mapstructure:"dsn"`
}

type Config struct {
	AppName string        `koanf:"app_name" mapstructure:"app_name"`
	APIHost string        `koanf:"api_host" mapstructure:"api_host"`
	OAuth   OAuthConfig   `koanf:"oauth" mapstructure:"oauth"`
	Webhook WebhookConfig `koanf:"webhook" mapstructure:"webhook"`
	Storage StorageConfig `koanf:"storage" mapstructure:"storage"`
}

func DefaultConfig() Config {
	return Config{
		AppName: "webflow-app",
		Webhook: WebhookConfig{
			TriggerType: TriggerTypeSitePublish,
		},
		Storage: StorageConfig{
			Driver: "sqlite3",
			DSN:    "file:webflow.db?cache=shared&_fk=1",
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.AppName) == "" {
		return fmt.Errorf("core: app_name is required")
	}
	if strings.TrimSpace(c.Webhook.TriggerType) == "" {
		return fmt.Errorf("core: webhook.trigger_type is required")
	}
	clientID := strings.TrimSpace(c.OAuth.ClientID)
	clientSecret := strings.TrimSpace(c.OAuth.ClientSecret)
	if (clientID == "") != (clientSecret == "") {
		return fmt.Errorf("core: oauth.client_id and oauth.client_secret must be set together")
	}
	switch driver := strings.TrimSpace(c.Storage.Driver); driver {
	case "", "sqlite3", "postgres":
	default:
		return fmt.Errorf("core: storage.driver %q is invalid", driver)
	}
	return nil
}

// SigningSecret is the secret used to verify inbound deliveries.
func (c Config) SigningSecret() string {
	if secret := strings.TrimSpace(c.Webhook.Secret); secret != "" {
		return secret
	}
	return strings.TrimSpace(c.OAuth.ClientSecret)
}
