package query

import "strings"

const (
	TypeGetSiteToken     = "webflow.query.credential.get"
	TypeListCredentials  = "webflow.query.credential.list"
	TypeListSiteWebhooks = "webflow.query.webhooks.list"
)

// GetSiteTokenMessage asks for the stored access token of a single site.
type GetSiteTokenMessage struct {
	SiteID string `json:"site_id"`
}

func (m GetSiteTokenMessage) Type() string { return TypeGetSiteToken }

func (m GetSiteTokenMessage) Validate() error {
	if strings.TrimSpace(m.SiteID) == "" {
		return queryValidationError("site_id", "site id is required")
	}
	return nil
}

// ListCredentialsMessage asks for every stored site credential.
type ListCredentialsMessage struct{}

func (m ListCredentialsMessage) Type() string { return TypeListCredentials }

func (m ListCredentialsMessage) Validate() error { return nil }

// ListSiteWebhooksMessage asks the platform for the webhook subscriptions
// registered on a site.
type ListSiteWebhooksMessage struct {
	AccessToken string `json:"access_token"`
	SiteID      string `json:"site_id"`
}

func (m ListSiteWebhooksMessage) Type() string { return TypeListSiteWebhooks }

func (m ListSiteWebhooksMessage) Validate() error {
	if strings.TrimSpace(m.AccessToken) == "" {
		return queryValidationError("access_token", "access token is required")
	}
	if strings.TrimSpace(m.SiteID) == "" {
		return queryValidationError("site_id", "site id is required")
	}
	return nil
}
