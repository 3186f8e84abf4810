package inbound

import (
	"context"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-webflow/core"
)

// InstallService drives the authorization and provisioning flow.
// *core.Service satisfies it.
type InstallService interface {
	BeginInstall(ctx context.Context, req core.InstallURLRequest) (core.BeginInstallResponse, error)
	Install(ctx context.Context, req core.InstallRequest) (core.InstallResult, error)
	AddWebhooks(ctx context.Context, token string) (core.ProvisionReport, error)
}

type InstallHandler struct {
	service     InstallService
	logger      core.Logger
	redirectURI string
}

type InstallOption func(*InstallHandler)

func WithInstallLogger(logger core.Logger) InstallOption {
	return func(h *InstallHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithRedirectURI sets the callback the consent screen returns to.
func WithRedirectURI(uri string) InstallOption {
	return func(h *InstallHandler) {
		h.redirectURI = strings.TrimSpace(uri)
	}
}

func NewInstallHandler(service InstallService, options ...InstallOption) *InstallHandler {
	handler := &InstallHandler{service: service}
	for _, option := range options {
		if option != nil {
			option(handler)
		}
	}
	handler.logger = glog.Ensure(handler.logger)
	return handler
}

type provisionedSitePayload struct {
	SiteID    string `json:"site_id"`
	SiteName  string `json:"site_name,omitempty"`
	WebhookID string `json:"webhook_id,omitempty"`
}

type failedSitePayload struct {
	SiteID   string `json:"site_id"`
	SiteName string `json:"site_name,omitempty"`
	Reason   string `json:"reason"`
}

type installReportPayload struct {
	Installed   bool                     `json:"installed"`
	Provisioned []provisionedSitePayload `json:"provisioned"`
	Failed      []failedSitePayload      `json:"failed,omitempty"`
}

func (h *InstallHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		writeError(w, goerrors.New("inbound: install handler is not configured", goerrors.CategoryInternal).
			WithCode(http.StatusInternalServerError).
			WithTextCode(core.AppErrorInternal))
		return
	}
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, methodNotAllowed(r.Method))
		return
	}

	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" {
		h.redirectToConsent(w, r)
		return
	}
	h.completeInstall(w, r, code, strings.TrimSpace(r.URL.Query().Get("state")))
}

func (h *InstallHandler) redirectToConsent(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.BeginInstall(r.Context(), core.InstallURLRequest{
		RedirectURI: h.redirectURI,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, resp.URL, http.StatusFound)
}

func (h *InstallHandler) completeInstall(w http.ResponseWriter, r *http.Request, code string, state string) {
	result, err := h.service.Install(r.Context(), core.InstallRequest{Code: code, State: state})
	if err != nil {
		writeError(w, err)
		return
	}

	report, err := h.service.AddWebhooks(r.Context(), result.AccessToken)
	if err != nil {
		writeError(w, err)
		return
	}

	payload := installReportPayload{
		Installed:   true,
		Provisioned: make([]provisionedSitePayload, 0, len(report.Provisioned)),
	}
	for _, provisioned := range report.Provisioned {
		payload.Provisioned = append(payload.Provisioned, provisionedSitePayload{
			SiteID:    provisioned.Site.ID,
			SiteName:  provisioned.Site.Name,
			WebhookID: provisioned.Webhook.ID,
		})
	}
	for _, failed := range report.Failed {
		payload.Failed = append(payload.Failed, failedSitePayload{
			SiteID:   failed.SiteID,
			SiteName: failed.SiteName,
			Reason:   failed.Reason,
		})
	}

	h.logger.Info("install completed",
		"provisioned", len(report.Provisioned),
		"failed", len(report.Failed),
	)
	writeJSON(w, http.StatusOK, payload)
}
