package core

import (
	"fmt"
	"strings"
	"time"
)

// TriggerTypeSitePublish is the webhook trigger provisioned on install.
const TriggerTypeSitePublish = "site_publish"

// Site is a site the authorizing user can manage.
type Site struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	ShortName string    `json:"short_name,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Webhook is a provisioned webhook subscription on one site.
type Webhook struct {
	ID          string    `json:"id"`
	SiteID      string    `json:"site_id"`
	TriggerType string    `json:"trigger_type"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// SiteCredential binds a site to the access token that can act on it.
type SiteCredential struct {
	SiteID      string    `json:"site_id"`
	AccessToken string    `json:"access_token"`
	InstalledAt time.Time `json:"installed_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

func (c SiteCredential) Validate() error {
	if strings.TrimSpace(c.SiteID) == "" {
		return fmt.Errorf("core: site id is required")
	}
	if strings.TrimSpace(c.AccessToken) == "" {
		return fmt.Errorf("core: access token is required")
	}
	return nil
}

// InstallResult is the outcome of exchanging an authorization code.
type InstallResult struct {
	AccessToken string
	State       InstallStateRecord
}

// ProvisionedSite records one successful webhook provisioning.
type ProvisionedSite struct {
	Site    Site    `json:"site"`
	Webhook Webhook `json:"webhook"`
}

// ProvisionFailure records one site that could not be provisioned. Reason is
// operator-facing text and never contains token material.
type ProvisionFailure struct {
	SiteID   string `json:"site_id"`
	SiteName string `json:"site_name,omitempty"`
	Reason   string `json:"reason"`
}

// ProvisionReport is the per-site outcome of a best-effort provisioning run.
// A run with zero reachable sites is a successful empty report.
type ProvisionReport struct {
	Provisioned []ProvisionedSite  `json:"provisioned"`
	Failed      []ProvisionFailure `json:"failed,omitempty"`
}

func (r ProvisionReport) AllSucceeded() bool {
	return len(r.Failed) == 0
}

// Delivery is an inbound webhook exactly as received: raw body bytes plus the
// two signature headers. The body must never be re-serialized before
// verification.
type Delivery struct {
	Signature string
	Timestamp string
	Body      []byte
}

// DeliveryGrant is the outcome of admitting a delivery: the site the event
// belongs to and, when a credential store is wired, the token that can act
// on it.
type DeliveryGrant struct {
	SiteID      string
	AccessToken string
}
