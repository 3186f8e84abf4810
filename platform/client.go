// Package platform is the authenticated REST client for the platform API:
// site listing and webhook provisioning on behalf of an installed app.
package platform

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

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-webflow/core"
)

const (
	defaultHost          = "https://api.webflow.com"
	defaultAcceptVersion = "1.0.0"

	defaultClientTimeout           = 30 * time.Second
	defaultResponseBodyLimit int64 = 10 << 20 // 10 MiB
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	Host                 string
	AcceptVersion        string
	HTTPClient           HTTPDoer
	MaxResponseBodyBytes int64
}

func NewClient(host string, httpClient HTTPDoer) *Client {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		host = defaultHost
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultClientTimeout}
	}
	return &Client{
		Host:                 host,
		AcceptVersion:        defaultAcceptVersion,
		HTTPClient:           httpClient,
		MaxResponseBodyBytes: defaultResponseBodyLimit,
	}
}

type siteEnvelope struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	ShortName string    `json:"shortName"`
	CreatedOn time.Time `json:"createdOn"`
}

type webhookEnvelope struct {
	ID          string    `json:"_id"`
	Site        string    `json:"site"`
	TriggerType string    `json:"triggerType"`
	URL         string    `json:"url"`
	CreatedOn   time.Time `json:"createdOn"`
}

type apiErrorEnvelope struct {
	Msg  string `json:"msg"`
	Err  string `json:"err"`
	Name string `json:"name"`
}

// Sites lists every site the token is allowed to manage.
func (c *Client) Sites(ctx context.Context, token string) ([]core.Site, error) {
	body, err := c.get(ctx, token, "/sites")
	if err != nil {
		return nil, err
	}
	envelopes := []siteEnvelope{}
	if err := json.Unmarshal(body, &envelopes); err != nil {
		return nil, platformWrapError(err, goerrors.CategoryExternal, "platform: decode sites response")
	}
	sites := make([]core.Site, 0, len(envelopes))
	for _, envelope := range envelopes {
		sites = append(sites, core.Site{
			ID:        envelope.ID,
			Name:      envelope.Name,
			ShortName: envelope.ShortName,
			CreatedAt: envelope.CreatedOn,
		})
	}
	return sites, nil
}

// ListWebhooks lists the webhook subscriptions registered on one site.
func (c *Client) ListWebhooks(ctx context.Context, token string, siteID string) ([]core.Webhook, error) {
	siteID = strings.TrimSpace(siteID)
	if siteID == "" {
		return nil, platformError(goerrors.CategoryBadInput, "platform: site id is required")
	}
	body, err := c.get(ctx, token, "/sites/"+url.PathEscape(siteID)+"/webhooks")
	if err != nil {
		return nil, err
	}
	envelopes := []webhookEnvelope{}
	if err := json.Unmarshal(body, &envelopes); err != nil {
		return nil, platformWrapError(err, goerrors.CategoryExternal, "platform: decode webhooks response")
	}
	webhooks := make([]core.Webhook, 0, len(envelopes))
	for _, envelope := range envelopes {
		webhooks = append(webhooks, webhookFromEnvelope(envelope))
	}
	return webhooks, nil
}

// CreateWebhook registers one webhook subscription on a site.
func (c *Client) CreateWebhook(ctx context.Context, token string, siteID string, req core.CreateWebhookRequest) (core.Webhook, error) {
	siteID = strings.TrimSpace(siteID)
	if siteID == "" {
		return core.Webhook{}, platformError(goerrors.CategoryBadInput, "platform: site id is required")
	}
	if strings.TrimSpace(req.TriggerType) == "" {
		return core.Webhook{}, platformError(goerrors.CategoryBadInput, "platform: trigger type is required")
	}
	if strings.TrimSpace(req.URL) == "" {
		return core.Webhook{}, platformError(goerrors.CategoryBadInput, "platform: webhook url is required")
	}

	payload, err := json.Marshal(map[string]string{
		"triggerType": strings.TrimSpace(req.TriggerType),
		"url":         strings.TrimSpace(req.URL),
	})
	if err != nil {
		return core.Webhook{}, platformWrapError(err, goerrors.CategoryInternal, "platform: encode webhook request")
	}

	body, err := c.do(ctx, token, http.MethodPost, "/sites/"+url.PathEscape(siteID)+"/webhooks", payload)
	if err != nil {
		return core.Webhook{}, err
	}
	envelope := webhookEnvelope{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return core.Webhook{}, platformWrapError(err, goerrors.CategoryExternal, "platform: decode webhook response")
	}
	return webhookFromEnvelope(envelope), nil
}

func (c *Client) get(ctx context.Context, token string, path string) ([]byte, error) {
	return c.do(ctx, token, http.MethodGet, path, nil)
}

func (c *Client) do(ctx context.Context, token string, method string, path string, payload []byte) ([]byte, error) {
	if c == nil || c.HTTPClient == nil {
		return nil, platformError(goerrors.CategoryInternal, "platform: client requires an http transport")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, platformError(goerrors.CategoryAuth, "platform: access token is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	host := strings.TrimRight(strings.TrimSpace(c.Host), "/")
	if host == "" {
		host = defaultHost
	}

	var reader io.Reader
	if len(payload) > 0 {
		reader = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, host+path, reader)
	if err != nil {
		return nil, platformWrapError(err, goerrors.CategoryBadInput, "platform: create request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", "application/json")
	if version := strings.TrimSpace(c.AcceptVersion); version != "" {
		httpReq.Header.Set("Accept-Version", version)
	}
	if len(payload) > 0 {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	httpRes, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, platformWrapError(err, goerrors.CategoryExternal, "platform: execute request")
	}
	defer httpRes.Body.Close()

	limit := c.MaxResponseBodyBytes
	if limit <= 0 {
		limit = defaultResponseBodyLimit
	}
	body, err := io.ReadAll(io.LimitReader(httpRes.Body, limit+1))
	if err != nil {
		return nil, platformWrapError(err, goerrors.CategoryExternal, "platform: read response body")
	}
	if int64(len(body)) > limit {
		return nil, platformError(
			goerrors.CategoryExternal,
			fmt.Sprintf("platform: response body exceeds limit of %d bytes", limit),
		)
	}

	if httpRes.StatusCode < http.StatusOK || httpRes.StatusCode >= http.StatusMultipleChoices {
		return nil, statusError(httpRes.StatusCode, body)
	}
	return body, nil
}

func statusError(statusCode int, body []byte) error {
	envelope := apiErrorEnvelope{}
	_ = json.Unmarshal(body, &envelope)
	message := strings.TrimSpace(envelope.Msg)
	if message == "" {
		message = strings.TrimSpace(envelope.Err)
	}
	if message == "" {
		message = http.StatusText(statusCode)
	}

	category := goerrors.CategoryExternal
	switch statusCode {
	case http.StatusUnauthorized:
		category = goerrors.CategoryAuth
	case http.StatusForbidden:
		category = goerrors.CategoryAuthz
	case http.StatusTooManyRequests:
		category = goerrors.CategoryRateLimit
	case http.StatusBadRequest, http.StatusNotFound, http.StatusConflict:
		category = goerrors.CategoryBadInput
	}
	return goerrors.New(
		fmt.Sprintf("platform: api error (%d): %s", statusCode, message),
		category,
	).WithCode(statusCode)
}

func platformError(category goerrors.Category, message string) error {
	return goerrors.New(message, category)
}

func platformWrapError(source error, category goerrors.Category, message string) error {
	if source == nil {
		return platformError(category, message)
	}
	return goerrors.Wrap(source, category, message)
}

func webhookFromEnvelope(envelope webhookEnvelope) core.Webhook {
	return core.Webhook{
		ID:          envelope.ID,
		SiteID:      envelope.Site,
		TriggerType: envelope.TriggerType,
		URL:         envelope.URL,
		CreatedAt:   envelope.CreatedOn,
	}
}

var _ core.PlatformAPI = (*Client)(nil)
