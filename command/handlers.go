package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-webflow/core"
)

type MutatingService interface {
	BeginInstall(ctx context.Context, req core.InstallURLRequest) (core.BeginInstallResponse, error)
	Install(ctx context.Context, req core.InstallRequest) (core.InstallResult, error)
	AddWebhooks(ctx context.Context, token string) (core.ProvisionReport, error)
}

type CredentialRemover interface {
	Delete(ctx context.Context, siteID string) error
}

type BeginInstallCommand struct {
	service MutatingService
}

func NewBeginInstallCommand(service MutatingService) *BeginInstallCommand {
	return &BeginInstallCommand{service: service}
}

func (c *BeginInstallCommand) Execute(ctx context.Context, msg BeginInstallMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: begin install service is required")
	}
	out, err := c.service.BeginInstall(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type InstallCommand struct {
	service MutatingService
}

func NewInstallCommand(service MutatingService) *InstallCommand {
	return &InstallCommand{service: service}
}

func (c *InstallCommand) Execute(ctx context.Context, msg InstallMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: install service is required")
	}
	out, err := c.service.Install(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ProvisionWebhooksCommand struct {
	service MutatingService
}

func NewProvisionWebhooksCommand(service MutatingService) *ProvisionWebhooksCommand {
	return &ProvisionWebhooksCommand{service: service}
}

func (c *ProvisionWebhooksCommand) Execute(ctx context.Context, msg ProvisionWebhooksMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: provisioning service is required")
	}
	out, err := c.service.AddWebhooks(ctx, msg.AccessToken)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RemoveCredentialCommand struct {
	store CredentialRemover
}

func NewRemoveCredentialCommand(store CredentialRemover) *RemoveCredentialCommand {
	return &RemoveCredentialCommand{store: store}
}

func (c *RemoveCredentialCommand) Execute(ctx context.Context, msg RemoveCredentialMessage) error {
	if c == nil || c.store == nil {
		return commandDependencyError("command: credential store is required")
	}
	return c.store.Delete(ctx, msg.SiteID)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
