package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[BeginInstallMessage]      = (*BeginInstallCommand)(nil)
	_ gocmd.Commander[InstallMessage]           = (*InstallCommand)(nil)
	_ gocmd.Commander[ProvisionWebhooksMessage] = (*ProvisionWebhooksCommand)(nil)
	_ gocmd.Commander[RemoveCredentialMessage]  = (*RemoveCredentialCommand)(nil)
)
