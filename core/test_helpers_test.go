package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
)

type stubCredentialStore struct {
	mu          sync.Mutex
	credentials map[string]SiteCredential
	putErr      error
	getErr      error
	failSiteIDs map[string]bool
	putCalls    int
}

func newStubCredentialStore() *stubCredentialStore {
	return &stubCredentialStore{credentials: map[string]SiteCredential{}}
}

func (s *stubCredentialStore) Put(_ context.Context, credential SiteCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putCalls++
	if s.putErr != nil {
		return s.putErr
	}
	if s.failSiteIDs[credential.SiteID] {
		return fmt.Errorf("stub: put rejected for %s", credential.SiteID)
	}
	s.credentials[credential.SiteID] = credential
	return nil
}

func (s *stubCredentialStore) Get(_ context.Context, siteID string) (SiteCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return SiteCredential{}, s.getErr
	}
	credential, ok := s.credentials[strings.TrimSpace(siteID)]
	if !ok {
		return SiteCredential{}, ErrCredentialNotFound
	}
	return credential, nil
}

func (s *stubCredentialStore) List(_ context.Context) ([]SiteCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SiteCredential, 0, len(s.credentials))
	for _, credential := range s.credentials {
		out = append(out, credential)
	}
	return out, nil
}

func (s *stubCredentialStore) Delete(_ context.Context, siteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.credentials, strings.TrimSpace(siteID))
	return nil
}

type stubPlatformAPI struct {
	sites         []Site
	sitesErr      error
	createErrFor  map[string]error
	created       []Webhook
	reportSiteIDs map[string]string
}

func (p *stubPlatformAPI) Sites(_ context.Context, token string) ([]Site, error) {
	if p.sitesErr != nil {
		return nil, p.sitesErr
	}
	return append([]Site(nil), p.sites...), nil
}

func (p *stubPlatformAPI) ListWebhooks(_ context.Context, _ string, siteID string) ([]Webhook, error) {
	out := []Webhook{}
	for _, webhook := range p.created {
		if webhook.SiteID == siteID {
			out = append(out, webhook)
		}
	}
	return out, nil
}

func (p *stubPlatformAPI) CreateWebhook(_ context.Context, _ string, siteID string, req CreateWebhookRequest) (Webhook, error) {
	if err := p.createErrFor[siteID]; err != nil {
		return Webhook{}, err
	}
	reported := siteID
	if mapped, ok := p.reportSiteIDs[siteID]; ok {
		reported = mapped
	}
	webhook := Webhook{
		ID:          "hook-" + siteID,
		SiteID:      reported,
		TriggerType: req.TriggerType,
		URL:         req.URL,
	}
	p.created = append(p.created, webhook)
	return webhook, nil
}

type stubExchanger struct {
	installURL  string
	token       string
	exchangeErr error
	codes       []string
}

func (e *stubExchanger) InstallURL(req InstallURLRequest) (string, error) {
	url := e.installURL
	if url == "" {
		url = "https://webflow.com/oauth/authorize?client_id=client-123"
	}
	if strings.TrimSpace(req.State) != "" {
		url += "&state=" + req.State
	}
	return url, nil
}

func (e *stubExchanger) Exchange(_ context.Context, code string) (string, error) {
	e.codes = append(e.codes, code)
	if e.exchangeErr != nil {
		return "", e.exchangeErr
	}
	if e.token == "" {
		return "tok-stub", nil
	}
	return e.token, nil
}

func newTestService(t *testing.T, cfg Config, options ...Option) *Service {
	t.Helper()
	service, err := NewService(cfg, options...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return service
}

func provisioningConfig() Config {
	cfg := DefaultConfig()
	cfg.OAuth.ClientID = "client-123"
	cfg.OAuth.ClientSecret = "secret-456"
	cfg.Webhook.URL = "https://app.example.com/webhook"
	return cfg
}
