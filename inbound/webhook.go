package inbound

import (
	"context"
	"io"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-webflow/core"
)

const (
	HeaderSignature = "X-Webflow-Signature"
	HeaderTimestamp = "X-Webflow-Timestamp"
)

const defaultMaxDeliveryBodyBytes = int64(1 << 20)

// DeliveryAuthorizer decides whether a signed delivery may be processed
// and resolves its grant. *core.Service satisfies it.
type DeliveryAuthorizer interface {
	AuthorizeDelivery(ctx context.Context, delivery core.Delivery) (core.DeliveryGrant, error)
}

// DeliveryHandler receives deliveries that passed signature verification
// together with the grant resolved for them.
type DeliveryHandler func(ctx context.Context, grant core.DeliveryGrant, delivery core.Delivery) error

type WebhookHandler struct {
	authorizer DeliveryAuthorizer
	handler    DeliveryHandler
	logger     core.Logger
	maxBody    int64
}

type WebhookOption func(*WebhookHandler)

func WithDeliveryHandler(handler DeliveryHandler) WebhookOption {
	return func(h *WebhookHandler) {
		if handler != nil {
			h.handler = handler
		}
	}
}

func WithWebhookLogger(logger core.Logger) WebhookOption {
	return func(h *WebhookHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func WithMaxDeliveryBody(limit int64) WebhookOption {
	return func(h *WebhookHandler) {
		if limit > 0 {
			h.maxBody = limit
		}
	}
}

func NewWebhookHandler(authorizer DeliveryAuthorizer, options ...WebhookOption) *WebhookHandler {
	handler := &WebhookHandler{
		authorizer: authorizer,
		maxBody:    defaultMaxDeliveryBodyBytes,
	}
	for _, option := range options {
		if option != nil {
			option(handler)
		}
	}
	handler.logger = glog.Ensure(handler.logger)
	if handler.handler == nil {
		handler.handler = handler.logDelivery
	}
	return handler
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.authorizer == nil {
		writeError(w, goerrors.New("inbound: webhook handler is not configured", goerrors.CategoryInternal).
			WithCode(http.StatusInternalServerError).
			WithTextCode(core.AppErrorInternal))
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, methodNotAllowed(r.Method))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		writeError(w, goerrors.Wrap(err, goerrors.CategoryBadInput, "inbound: read delivery body").
			WithCode(http.StatusBadRequest).
			WithTextCode(core.AppErrorBadInput))
		return
	}

	delivery := core.Delivery{
		Signature: r.Header.Get(HeaderSignature),
		Timestamp: r.Header.Get(HeaderTimestamp),
		Body:      body,
	}

	grant, err := h.authorizer.AuthorizeDelivery(r.Context(), delivery)
	if err != nil {
		h.logger.Warn("webhook delivery refused", "error", err.Error(), "body_bytes", len(body))
		writeError(w, err)
		return
	}

	if err := h.handler(r.Context(), grant, delivery); err != nil {
		h.logger.Error("webhook delivery handler failed", "error", err.Error())
		writeError(w, goerrors.Wrap(err, goerrors.CategoryOperation, "inbound: delivery handler failed").
			WithCode(http.StatusBadGateway).
			WithTextCode(core.AppErrorInternal))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"accepted": true})
}

func (h *WebhookHandler) logDelivery(_ context.Context, grant core.DeliveryGrant, delivery core.Delivery) error {
	h.logger.Info("webhook delivery accepted",
		"site_id", grant.SiteID,
		"timestamp", delivery.Timestamp,
		"body_bytes", len(delivery.Body),
	)
	return nil
}
