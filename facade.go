package webflow

import (
	"fmt"

	webflowcommand "github.com/goliatone/go-webflow/command"
	webflowquery "github.com/goliatone/go-webflow/query"
)

// CommandQueryService is the service surface the facade dispatches to.
// *core.Service satisfies it.
type CommandQueryService interface {
	webflowcommand.MutatingService
	webflowquery.CredentialReader
}

type Commands struct {
	BeginInstall      *webflowcommand.BeginInstallCommand
	Install           *webflowcommand.InstallCommand
	ProvisionWebhooks *webflowcommand.ProvisionWebhooksCommand
	RemoveCredential  *webflowcommand.RemoveCredentialCommand
}

type Queries struct {
	GetSiteToken     *webflowquery.GetSiteTokenQuery
	ListCredentials  *webflowquery.ListCredentialsQuery
	ListSiteWebhooks *webflowquery.ListSiteWebhooksQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	remover       webflowcommand.CredentialRemover
	webhookReader webflowquery.WebhookReader
}

// WithCredentialRemover enables the remove-credential command, backed by
// the durable store.
func WithCredentialRemover(remover webflowcommand.CredentialRemover) FacadeOption {
	return func(options *facadeOptions) {
		options.remover = remover
	}
}

// WithWebhookReader enables the list-site-webhooks query, backed by the
// platform client.
func WithWebhookReader(reader webflowquery.WebhookReader) FacadeOption {
	return func(options *facadeOptions) {
		options.webhookReader = reader
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("webflow: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		BeginInstall:      webflowcommand.NewBeginInstallCommand(service),
		Install:           webflowcommand.NewInstallCommand(service),
		ProvisionWebhooks: webflowcommand.NewProvisionWebhooksCommand(service),
	}
	if cfg.remover != nil {
		facade.commands.RemoveCredential = webflowcommand.NewRemoveCredentialCommand(cfg.remover)
	}

	facade.queries = Queries{
		GetSiteToken:    webflowquery.NewGetSiteTokenQuery(service),
		ListCredentials: webflowquery.NewListCredentialsQuery(service),
	}
	if cfg.webhookReader != nil {
		facade.queries.ListSiteWebhooks = webflowquery.NewListSiteWebhooksQuery(cfg.webhookReader)
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}
