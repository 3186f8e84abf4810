package query

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-webflow/core"
)

var (
	_ gocmd.Querier[GetSiteTokenMessage, core.SiteCredential]      = (*GetSiteTokenQuery)(nil)
	_ gocmd.Querier[ListCredentialsMessage, []core.SiteCredential] = (*ListCredentialsQuery)(nil)
	_ gocmd.Querier[ListSiteWebhooksMessage, []core.Webhook]       = (*ListSiteWebhooksQuery)(nil)
)
