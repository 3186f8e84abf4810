package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// InstallRequest completes one install: the single-use authorization code
// plus the state echoed back by the consent redirect.
type InstallRequest struct {
	Code  string
	State string
}

// BeginInstallResponse carries the consent URL and the state bound to it.
type BeginInstallResponse struct {
	URL   string
	State string
}

// InstallURL builds the consent URL without recording state. Configured
// redirect URI and scopes fill any the request leaves empty.
func (s *Service) InstallURL(req InstallURLRequest) (string, error) {
	if s == nil || s.exchanger == nil {
		return "", s.mapError(fmt.Errorf("core: token exchanger is required"))
	}
	if strings.TrimSpace(req.RedirectURI) == "" {
		req.RedirectURI = s.config.OAuth.RedirectURI
	}
	if len(req.Scope) == 0 {
		req.Scope = append([]string(nil), s.config.OAuth.Scopes...)
	}
	installURL, err := s.exchanger.InstallURL(req)
	if err != nil {
		return "", s.mapError(err)
	}
	return installURL, nil
}

// BeginInstall builds the consent URL and records the state so the callback
// can be tied back to this install.
func (s *Service) BeginInstall(ctx context.Context, req InstallURLRequest) (response BeginInstallResponse, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		s.observeOperation(ctx, startedAt, "begin_install", err, fields)
	}()

	if s == nil || s.exchanger == nil {
		err = s.mapError(fmt.Errorf("core: token exchanger is required"))
		return BeginInstallResponse{}, err
	}

	state := strings.TrimSpace(req.State)
	if state == "" {
		generated, generateErr := generateInstallState()
		if generateErr != nil {
			err = s.mapError(generateErr)
			return BeginInstallResponse{}, err
		}
		state = generated
	}
	req.State = state

	installURL, urlErr := s.InstallURL(req)
	if urlErr != nil {
		err = urlErr
		return BeginInstallResponse{}, err
	}

	if s.stateStore != nil {
		saveErr := s.stateStore.Save(ctx, InstallStateRecord{
			State:       state,
			RedirectURI: req.RedirectURI,
			Scopes:      append([]string(nil), req.Scope...),
			CreatedAt:   time.Now().UTC(),
		})
		if saveErr != nil {
			err = s.mapError(saveErr)
			return BeginInstallResponse{}, err
		}
	}

	return BeginInstallResponse{URL: installURL, State: state}, nil
}

// Install exchanges the authorization code for an access token. When the
// request carries a state it must match an outstanding install; states are
// single-use. The code itself is single-use upstream, so failures are
// surfaced, never retried.
func (s *Service) Install(ctx context.Context, req InstallRequest) (result InstallResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		s.observeOperation(ctx, startedAt, "install", err, fields)
	}()

	if s == nil || s.exchanger == nil {
		err = s.mapError(fmt.Errorf("core: token exchanger is required"))
		return InstallResult{}, err
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		err = s.mapError(fmt.Errorf("core: authorization code is required"))
		return InstallResult{}, err
	}

	record := InstallStateRecord{}
	if state := strings.TrimSpace(req.State); state != "" {
		if s.stateStore == nil {
			err = s.mapError(fmt.Errorf("core: install state store is not configured"))
			return InstallResult{}, err
		}
		consumed, consumeErr := s.stateStore.Consume(ctx, state)
		if consumeErr != nil {
			err = s.mapError(consumeErr)
			return InstallResult{}, err
		}
		record = consumed
	}

	token, exchangeErr := s.exchanger.Exchange(ctx, code)
	if exchangeErr != nil {
		err = s.mapError(exchangeErr)
		return InstallResult{}, err
	}

	return InstallResult{AccessToken: token, State: record}, nil
}

// SiteToken returns the stored credential for one site.
func (s *Service) SiteToken(ctx context.Context, siteID string) (SiteCredential, error) {
	if s == nil || s.credentialStore == nil {
		return SiteCredential{}, s.mapError(fmt.Errorf("core: credential store is required"))
	}
	siteID = strings.TrimSpace(siteID)
	if siteID == "" {
		return SiteCredential{}, s.mapError(fmt.Errorf("core: site id is required"))
	}
	credential, err := s.credentialStore.Get(ctx, siteID)
	if err != nil {
		return SiteCredential{}, s.mapError(err)
	}
	return credential, nil
}

// Credentials lists every stored site credential.
func (s *Service) Credentials(ctx context.Context) ([]SiteCredential, error) {
	if s == nil || s.credentialStore == nil {
		return nil, s.mapError(fmt.Errorf("core: credential store is required"))
	}
	credentials, err := s.credentialStore.List(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}
	return credentials, nil
}
