package webflow

import (
	"context"
	"testing"

	gocmd "github.com/goliatone/go-command"

	webflowcommand "github.com/goliatone/go-webflow/command"
	"github.com/goliatone/go-webflow/core"
)

type facadeStubService struct {
	installResult core.InstallResult
	tokens        map[string]string
}

func (s *facadeStubService) BeginInstall(context.Context, core.InstallURLRequest) (core.BeginInstallResponse, error) {
	return core.BeginInstallResponse{URL: "https://webflow.com/oauth/authorize", State: "state-1"}, nil
}

func (s *facadeStubService) Install(context.Context, core.InstallRequest) (core.InstallResult, error) {
	return s.installResult, nil
}

func (s *facadeStubService) AddWebhooks(context.Context, string) (core.ProvisionReport, error) {
	return core.ProvisionReport{}, nil
}

func (s *facadeStubService) SiteToken(_ context.Context, siteID string) (core.SiteCredential, error) {
	token, ok := s.tokens[siteID]
	if !ok {
		return core.SiteCredential{}, core.ErrCredentialNotFound
	}
	return core.SiteCredential{SiteID: siteID, AccessToken: token}, nil
}

func (s *facadeStubService) Credentials(context.Context) ([]core.SiteCredential, error) {
	out := make([]core.SiteCredential, 0, len(s.tokens))
	for siteID, token := range s.tokens {
		out = append(out, core.SiteCredential{SiteID: siteID, AccessToken: token})
	}
	return out, nil
}

type facadeStubRemover struct {
	deleted []string
}

func (r *facadeStubRemover) Delete(_ context.Context, siteID string) error {
	r.deleted = append(r.deleted, siteID)
	return nil
}

func TestNewFacade_RequiresService(t *testing.T) {
	if _, err := NewFacade(nil); err == nil {
		t.Fatalf("expected error for nil service")
	}
}

func TestFacade_WiresCommandsAndQueries(t *testing.T) {
	service := &facadeStubService{
		installResult: core.InstallResult{AccessToken: "tok-abc"},
		tokens:        map[string]string{"site-1": "tok-abc"},
	}
	remover := &facadeStubRemover{}

	facade, err := NewFacade(service, WithCredentialRemover(remover))
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	commands := facade.Commands()
	if commands.BeginInstall == nil || commands.Install == nil || commands.ProvisionWebhooks == nil {
		t.Fatalf("expected core commands to be wired: %#v", commands)
	}
	if commands.RemoveCredential == nil {
		t.Fatalf("expected remove credential command with remover option")
	}

	collector := gocmd.NewResult[core.InstallResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)
	if err := commands.Install.Execute(ctx, webflowcommand.InstallMessage{
		Request: core.InstallRequest{Code: "one-time-code"},
	}); err != nil {
		t.Fatalf("execute install: %v", err)
	}
	if result, ok := collector.Load(); !ok || result.AccessToken != "tok-abc" {
		t.Fatalf("unexpected install result %#v ok=%v", result, ok)
	}

	if err := commands.RemoveCredential.Execute(context.Background(), webflowcommand.RemoveCredentialMessage{SiteID: "site-1"}); err != nil {
		t.Fatalf("execute remove: %v", err)
	}
	if len(remover.deleted) != 1 || remover.deleted[0] != "site-1" {
		t.Fatalf("unexpected deletions %#v", remover.deleted)
	}

	queries := facade.Queries()
	if queries.GetSiteToken == nil || queries.ListCredentials == nil {
		t.Fatalf("expected credential queries to be wired")
	}
	if queries.ListSiteWebhooks != nil {
		t.Fatalf("webhook query should stay nil without a reader")
	}
}
