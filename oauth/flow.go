// Package oauth implements the authorization-code installation flow:
// building the user-facing consent URL and exchanging a one-time code for a
// per-installation access token.
package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAuthorizeHost = "https://webflow.com"
	defaultTokenHost     = "https://api.webflow.com"

	authorizePath = "/oauth/authorize"
	tokenPath     = "/oauth/access_token"

	defaultExchangeTimeout    = 30 * time.Second
	maxTokenResponseBodyBytes = 1 << 20 // 1 MiB
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// FlowConfig describes the immutable authorization client: client
// credentials, the two platform hosts, and transport policy. The platform
// expects the client credentials in the JSON request body, not as HTTP Basic
// auth.
type FlowConfig struct {
	ClientID        string
	ClientSecret    string
	AuthorizeHost   string
	TokenHost       string
	ExchangeTimeout time.Duration
	HTTPClient      HTTPDoer
}

// InstallURLOptions carries the recognized consent-URL options.
type InstallURLOptions struct {
	RedirectURI string
	Scope       []string
	State       string
}

// AuthorizationCodeFlow performs the authorization-code grant for one
// configured client. Safe for concurrent use.
type AuthorizationCodeFlow struct {
	cfg        FlowConfig
	httpClient HTTPDoer
}

type tokenEndpointPayload struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	ErrorCode        string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func NewAuthorizationCodeFlow(cfg FlowConfig) (*AuthorizationCodeFlow, error) {
	cfg.ClientID = strings.TrimSpace(cfg.ClientID)
	cfg.ClientSecret = strings.TrimSpace(cfg.ClientSecret)
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("oauth: client id is required")
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("oauth: client secret is required")
	}
	cfg.AuthorizeHost = strings.TrimRight(strings.TrimSpace(cfg.AuthorizeHost), "/")
	if cfg.AuthorizeHost == "" {
		cfg.AuthorizeHost = defaultAuthorizeHost
	}
	cfg.TokenHost = strings.TrimRight(strings.TrimSpace(cfg.TokenHost), "/")
	if cfg.TokenHost == "" {
		cfg.TokenHost = defaultTokenHost
	}
	if cfg.ExchangeTimeout <= 0 {
		cfg.ExchangeTimeout = defaultExchangeTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.ExchangeTimeout}
	}

	return &AuthorizationCodeFlow{
		cfg:        cfg,
		httpClient: httpClient,
	}, nil
}

// InstallURL builds the consent URL a user visits to install the app. Pure:
// no I/O, no state.
func (f *AuthorizationCodeFlow) InstallURL(opts InstallURLOptions) (string, error) {
	if f == nil {
		return "", fmt.Errorf("oauth: authorization flow is nil")
	}

	values := url.Values{}
	values.Set("response_type", "code")
	values.Set("client_id", f.cfg.ClientID)
	if redirectURI := strings.TrimSpace(opts.RedirectURI); redirectURI != "" {
		values.Set("redirect_uri", redirectURI)
	}
	if scope := joinScope(opts.Scope); scope != "" {
		values.Set("scope", scope)
	}
	if state := strings.TrimSpace(opts.State); state != "" {
		values.Set("state", state)
	}

	return f.cfg.AuthorizeHost + authorizePath + "?" + values.Encode(), nil
}

// Exchange performs the authorization-code grant: one POST to the token host
// with the client credentials and code in the JSON body. Authorization codes
// are single-use upstream, so a failed exchange is never retried here.
func (f *AuthorizationCodeFlow) Exchange(ctx context.Context, code string) (string, error) {
	if f == nil || f.httpClient == nil {
		return "", fmt.Errorf("oauth: authorization flow is not configured")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return "", fmt.Errorf("oauth: authorization code is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	grant := map[string]string{
		"client_id":     f.cfg.ClientID,
		"client_secret": f.cfg.ClientSecret,
		"code":          code,
		"grant_type":    "authorization_code",
	}
	encoded, err := json.Marshal(grant)
	if err != nil {
		return "", fmt.Errorf("oauth: encode token request: %w", err)
	}

	requestCtx, cancel := context.WithTimeout(ctx, f.cfg.ExchangeTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(
		requestCtx,
		http.MethodPost,
		f.cfg.TokenHost+tokenPath,
		bytes.NewReader(encoded),
	)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	response, err := f.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("oauth: token request failed: %w", err)
	}
	defer response.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(response.Body, maxTokenResponseBodyBytes+1))
	if readErr != nil {
		return "", fmt.Errorf("oauth: read token response: %w", readErr)
	}
	if int64(len(body)) > maxTokenResponseBodyBytes {
		return "", fmt.Errorf("oauth: token response exceeds %d bytes", maxTokenResponseBodyBytes)
	}

	payload := tokenEndpointPayload{}
	if len(bytes.TrimSpace(body)) > 0 {
		if decodeErr := json.Unmarshal(body, &payload); decodeErr != nil {
			return "", fmt.Errorf("oauth: decode token response: %w", decodeErr)
		}
	}
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf(
			"oauth: token endpoint error (%d): %s",
			response.StatusCode,
			describeTokenError(payload),
		)
	}
	if payload.ErrorCode != "" {
		return "", fmt.Errorf("oauth: token endpoint error: %s", describeTokenError(payload))
	}
	token := strings.TrimSpace(payload.AccessToken)
	if token == "" {
		return "", fmt.Errorf("oauth: token endpoint response missing access token")
	}
	return token, nil
}

func describeTokenError(payload tokenEndpointPayload) string {
	if strings.TrimSpace(payload.ErrorDescription) != "" {
		return strings.TrimSpace(payload.ErrorDescription)
	}
	if strings.TrimSpace(payload.ErrorCode) != "" {
		return strings.TrimSpace(payload.ErrorCode)
	}
	return "unknown error"
}

func joinScope(scope []string) string {
	parts := make([]string, 0, len(scope))
	for _, entry := range scope {
		if trimmed := strings.TrimSpace(entry); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}
