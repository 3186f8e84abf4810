// Package command exposes the mutating application operations as go-command
// messages so they can be dispatched, queued, or invoked in-process.
package command

import (
	"strings"

	"github.com/goliatone/go-webflow/core"
)

const (
	TypeBeginInstall      = "webflow.command.install.begin"
	TypeInstall           = "webflow.command.install.complete"
	TypeProvisionWebhooks = "webflow.command.webhooks.provision"
	TypeRemoveCredential  = "webflow.command.credential.remove"
)

type BeginInstallMessage struct {
	Request core.InstallURLRequest
}

func (BeginInstallMessage) Type() string { return TypeBeginInstall }

func (BeginInstallMessage) Validate() error {
	return nil
}

type InstallMessage struct {
	Request core.InstallRequest
}

func (InstallMessage) Type() string { return TypeInstall }

func (m InstallMessage) Validate() error {
	if strings.TrimSpace(m.Request.Code) == "" {
		return commandValidationError("code", "authorization code is required")
	}
	return nil
}

type ProvisionWebhooksMessage struct {
	AccessToken string
}

func (ProvisionWebhooksMessage) Type() string { return TypeProvisionWebhooks }

func (m ProvisionWebhooksMessage) Validate() error {
	if strings.TrimSpace(m.AccessToken) == "" {
		return commandValidationError("access_token", "access token is required")
	}
	return nil
}

type RemoveCredentialMessage struct {
	SiteID string
}

func (RemoveCredentialMessage) Type() string { return TypeRemoveCredential }

func (m RemoveCredentialMessage) Validate() error {
	if strings.TrimSpace(m.SiteID) == "" {
		return commandValidationError("site_id", "site id is required")
	}
	return nil
}
