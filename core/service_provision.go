package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// AddWebhooks provisions the configured trigger on every site the token can
// manage and persists the site to token binding for each success. The run is
// best effort: one failing site is reported, not fatal, and never aborts the
// remaining sites. Zero reachable sites is a successful empty report.
func (s *Service) AddWebhooks(ctx context.Context, token string) (report ProvisionReport, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"trigger_type": s.Config().Webhook.TriggerType,
	}
	defer func() {
		fields["provisioned"] = len(report.Provisioned)
		fields["failed"] = len(report.Failed)
		s.observeOperation(ctx, startedAt, "add_webhooks", err, fields)
	}()

	if s == nil || s.platform == nil {
		err = s.mapError(fmt.Errorf("core: platform api is required"))
		return ProvisionReport{}, err
	}
	if s.credentialStore == nil {
		err = s.mapError(fmt.Errorf("core: credential store is required"))
		return ProvisionReport{}, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		err = s.mapError(fmt.Errorf("core: access token is required"))
		return ProvisionReport{}, err
	}
	callbackURL := strings.TrimSpace(s.config.Webhook.URL)
	if callbackURL == "" {
		err = s.mapError(fmt.Errorf("core: webhook.url is required for provisioning"))
		return ProvisionReport{}, err
	}

	sites, sitesErr := s.platform.Sites(ctx, token)
	if sitesErr != nil {
		err = s.mapError(sitesErr)
		return ProvisionReport{}, err
	}

	now := time.Now().UTC()
	for _, site := range sites {
		webhook, createErr := s.platform.CreateWebhook(ctx, token, site.ID, CreateWebhookRequest{
			TriggerType: s.config.Webhook.TriggerType,
			URL:         callbackURL,
		})
		if createErr != nil {
			report.Failed = append(report.Failed, ProvisionFailure{
				SiteID:   site.ID,
				SiteName: site.Name,
				Reason:   createErr.Error(),
			})
			continue
		}

		// The credential is keyed by the site id the subscription reports,
		// which is authoritative over the listing.
		siteID := strings.TrimSpace(webhook.SiteID)
		if siteID == "" {
			siteID = site.ID
		}
		putErr := s.credentialStore.Put(ctx, SiteCredential{
			SiteID:      siteID,
			AccessToken: token,
			InstalledAt: now,
		})
		if putErr != nil {
			report.Failed = append(report.Failed, ProvisionFailure{
				SiteID:   siteID,
				SiteName: site.Name,
				Reason:   fmt.Sprintf("credential store: %v", putErr),
			})
			continue
		}

		report.Provisioned = append(report.Provisioned, ProvisionedSite{
			Site:    site,
			Webhook: webhook,
		})
	}

	return report, nil
}
