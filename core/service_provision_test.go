package core

import (
	"context"
	"errors"
	"testing"
)

func TestAddWebhooks_ProvisionsEverySite(t *testing.T) {
	store := newStubCredentialStore()
	platform := &stubPlatformAPI{
		sites: []Site{
			{ID: "site-1", Name: "Marketing"},
			{ID: "site-2", Name: "Docs"},
		},
	}
	service := newTestService(t, provisioningConfig(),
		WithTokenExchanger(&stubExchanger{}),
		WithCredentialStore(store),
		WithPlatformAPI(platform),
	)

	report, err := service.AddWebhooks(context.Background(), "tok-abc")
	if err != nil {
		t.Fatalf("add webhooks: %v", err)
	}
	if !report.AllSucceeded() {
		t.Fatalf("expected full success, got failures %+v", report.Failed)
	}
	if len(report.Provisioned) != 2 {
		t.Fatalf("expected 2 provisioned sites, got %d", len(report.Provisioned))
	}
	for _, entry := range report.Provisioned {
		if entry.Webhook.TriggerType != TriggerTypeSitePublish {
			t.Fatalf("expected site_publish trigger, got %q", entry.Webhook.TriggerType)
		}
		if entry.Webhook.URL != "https://app.example.com/webhook" {
			t.Fatalf("unexpected webhook url %q", entry.Webhook.URL)
		}
	}

	for _, siteID := range []string{"site-1", "site-2"} {
		credential, getErr := store.Get(context.Background(), siteID)
		if getErr != nil {
			t.Fatalf("expected credential stored for %s: %v", siteID, getErr)
		}
		if credential.AccessToken != "tok-abc" {
			t.Fatalf("unexpected stored token %q", credential.AccessToken)
		}
	}
}

func TestAddWebhooks_OneFailingSiteDoesNotAbortTheRest(t *testing.T) {
	store := newStubCredentialStore()
	platform := &stubPlatformAPI{
		sites: []Site{
			{ID: "site-1"},
			{ID: "site-2"},
			{ID: "site-3"},
		},
		createErrFor: map[string]error{
			"site-2": errors.New("platform: api error (500): upstream exploded"),
		},
	}
	service := newTestService(t, provisioningConfig(),
		WithTokenExchanger(&stubExchanger{}),
		WithCredentialStore(store),
		WithPlatformAPI(platform),
	)

	report, err := service.AddWebhooks(context.Background(), "tok-abc")
	if err != nil {
		t.Fatalf("add webhooks: %v", err)
	}
	if len(report.Provisioned) != 2 {
		t.Fatalf("expected 2 provisioned sites, got %d", len(report.Provisioned))
	}
	if len(report.Failed) != 1 {
		t.Fatalf("expected 1 failed site, got %d", len(report.Failed))
	}
	if report.Failed[0].SiteID != "site-2" {
		t.Fatalf("expected site-2 failure, got %q", report.Failed[0].SiteID)
	}

	if _, getErr := store.Get(context.Background(), "site-2"); !errors.Is(getErr, ErrCredentialNotFound) {
		t.Fatalf("expected no credential for failed site, got %v", getErr)
	}
	if _, getErr := store.Get(context.Background(), "site-3"); getErr != nil {
		t.Fatalf("expected later site still provisioned: %v", getErr)
	}
}

func TestAddWebhooks_FailedStorePutMarksSiteFailed(t *testing.T) {
	store := newStubCredentialStore()
	store.failSiteIDs = map[string]bool{"site-1": true}
	platform := &stubPlatformAPI{sites: []Site{{ID: "site-1"}, {ID: "site-2"}}}
	service := newTestService(t, provisioningConfig(),
		WithTokenExchanger(&stubExchanger{}),
		WithCredentialStore(store),
		WithPlatformAPI(platform),
	)

	report, err := service.AddWebhooks(context.Background(), "tok-abc")
	if err != nil {
		t.Fatalf("add webhooks: %v", err)
	}
	if len(report.Failed) != 1 || report.Failed[0].SiteID != "site-1" {
		t.Fatalf("expected site-1 marked failed, got %+v", report.Failed)
	}
	if len(report.Provisioned) != 1 || report.Provisioned[0].Site.ID != "site-2" {
		t.Fatalf("expected site-2 provisioned, got %+v", report.Provisioned)
	}
}

func TestAddWebhooks_CredentialKeyedBySubscriptionSite(t *testing.T) {
	store := newStubCredentialStore()
	// The subscription response reports a different canonical site id than
	// the listing.
	platform := &stubPlatformAPI{
		sites:         []Site{{ID: "site-alias"}},
		reportSiteIDs: map[string]string{"site-alias": "site-canonical"},
	}
	service := newTestService(t, provisioningConfig(),
		WithTokenExchanger(&stubExchanger{}),
		WithCredentialStore(store),
		WithPlatformAPI(platform),
	)

	report, err := service.AddWebhooks(context.Background(), "tok-abc")
	if err != nil {
		t.Fatalf("add webhooks: %v", err)
	}
	if len(report.Provisioned) != 1 {
		t.Fatalf("expected 1 provisioned site, got %d", len(report.Provisioned))
	}
	if _, getErr := store.Get(context.Background(), "site-canonical"); getErr != nil {
		t.Fatalf("expected credential keyed by subscription site id: %v", getErr)
	}
	if _, getErr := store.Get(context.Background(), "site-alias"); !errors.Is(getErr, ErrCredentialNotFound) {
		t.Fatalf("expected no credential under listing alias, got %v", getErr)
	}
}

func TestAddWebhooks_ZeroSitesIsEmptySuccess(t *testing.T) {
	service := newTestService(t, provisioningConfig(),
		WithTokenExchanger(&stubExchanger{}),
		WithCredentialStore(newStubCredentialStore()),
		WithPlatformAPI(&stubPlatformAPI{}),
	)

	report, err := service.AddWebhooks(context.Background(), "tok-abc")
	if err != nil {
		t.Fatalf("add webhooks: %v", err)
	}
	if len(report.Provisioned) != 0 || len(report.Failed) != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}

func TestAddWebhooks_ValidatesPreconditions(t *testing.T) {
	store := newStubCredentialStore()
	platform := &stubPlatformAPI{sites: []Site{{ID: "site-1"}}}

	t.Run("missing token", func(t *testing.T) {
		service := newTestService(t, provisioningConfig(),
			WithTokenExchanger(&stubExchanger{}),
			WithCredentialStore(store),
			WithPlatformAPI(platform),
		)
		if _, err := service.AddWebhooks(context.Background(), "   "); err == nil {
			t.Fatalf("expected missing token error")
		}
	})

	t.Run("missing webhook url", func(t *testing.T) {
		cfg := provisioningConfig()
		cfg.Webhook.URL = ""
		service := newTestService(t, cfg,
			WithTokenExchanger(&stubExchanger{}),
			WithCredentialStore(store),
			WithPlatformAPI(platform),
		)
		if _, err := service.AddWebhooks(context.Background(), "tok-abc"); err == nil {
			t.Fatalf("expected missing webhook url error")
		}
	})

	t.Run("site listing failure is fatal", func(t *testing.T) {
		service := newTestService(t, provisioningConfig(),
			WithTokenExchanger(&stubExchanger{}),
			WithCredentialStore(store),
			WithPlatformAPI(&stubPlatformAPI{sitesErr: errors.New("platform: api error (401): token revoked")}),
		)
		if _, err := service.AddWebhooks(context.Background(), "tok-abc"); err == nil {
			t.Fatalf("expected listing failure surfaced")
		}
	})
}
