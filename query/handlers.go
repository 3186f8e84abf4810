package query

import (
	"context"

	"github.com/goliatone/go-webflow/core"
)

// CredentialReader exposes the read side of installed site credentials.
// *core.Service satisfies it.
type CredentialReader interface {
	SiteToken(ctx context.Context, siteID string) (core.SiteCredential, error)
	Credentials(ctx context.Context) ([]core.SiteCredential, error)
}

// WebhookReader lists webhook subscriptions on the platform.
// *platform.Client satisfies it.
type WebhookReader interface {
	ListWebhooks(ctx context.Context, token string, siteID string) ([]core.Webhook, error)
}

type GetSiteTokenQuery struct {
	reader CredentialReader
}

func NewGetSiteTokenQuery(reader CredentialReader) *GetSiteTokenQuery {
	return &GetSiteTokenQuery{reader: reader}
}

func (q *GetSiteTokenQuery) Query(ctx context.Context, msg GetSiteTokenMessage) (core.SiteCredential, error) {
	if q == nil || q.reader == nil {
		return core.SiteCredential{}, queryDependencyError("query: credential reader is required")
	}
	return q.reader.SiteToken(ctx, msg.SiteID)
}

type ListCredentialsQuery struct {
	reader CredentialReader
}

func NewListCredentialsQuery(reader CredentialReader) *ListCredentialsQuery {
	return &ListCredentialsQuery{reader: reader}
}

func (q *ListCredentialsQuery) Query(ctx context.Context, _ ListCredentialsMessage) ([]core.SiteCredential, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: credential reader is required")
	}
	return q.reader.Credentials(ctx)
}

type ListSiteWebhooksQuery struct {
	reader WebhookReader
}

func NewListSiteWebhooksQuery(reader WebhookReader) *ListSiteWebhooksQuery {
	return &ListSiteWebhooksQuery{reader: reader}
}

func (q *ListSiteWebhooksQuery) Query(ctx context.Context, msg ListSiteWebhooksMessage) ([]core.Webhook, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: webhook reader is required")
	}
	return q.reader.ListWebhooks(ctx, msg.AccessToken, msg.SiteID)
}
