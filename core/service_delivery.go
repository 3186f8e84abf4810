package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-webflow/webhooks"
)

type deliveryBody struct {
	Site   string `json:"site"`
	SiteID string `json:"siteId"`
}

// AuthorizeDelivery verifies the signature and freshness of one inbound
// delivery and, on acceptance, resolves the grant for the site the event
// names. A verification failure is returned as a forbidden-category error;
// a missing secret is a configuration fault, never a rejection. The token
// lookup runs only when a credential store is wired; a store I/O failure
// propagates as unavailable, never as not-found.
func (s *Service) AuthorizeDelivery(ctx context.Context, delivery Delivery) (grant DeliveryGrant, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"body_bytes": len(delivery.Body),
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "authorize_delivery", err, fields)
	}()

	if s == nil || s.verifier == nil {
		err = s.mapError(fmt.Errorf("core: delivery verifier is required"))
		return DeliveryGrant{}, err
	}
	secret := s.config.SigningSecret()
	if secret == "" {
		err = s.mapError(fmt.Errorf("core: webhook signing secret is required"))
		return DeliveryGrant{}, err
	}

	if verifyErr := s.verifier.Verify(delivery.Signature, delivery.Timestamp, delivery.Body, secret); verifyErr != nil {
		if webhooks.IsRejection(verifyErr) {
			err = ensureAppErrorEnvelope(
				goerrors.Wrap(verifyErr, goerrors.CategoryAuthz, "core: delivery rejected").
					WithTextCode(AppErrorDeliveryRejected),
			)
			return DeliveryGrant{}, err
		}
		err = s.mapError(verifyErr)
		return DeliveryGrant{}, err
	}

	grant.SiteID = deliverySiteID(delivery.Body)
	if grant.SiteID != "" {
		fields["site_id"] = grant.SiteID
	}
	if s.credentialStore == nil || grant.SiteID == "" {
		return grant, nil
	}

	credential, getErr := s.credentialStore.Get(ctx, grant.SiteID)
	if getErr != nil {
		if errors.Is(getErr, ErrCredentialNotFound) {
			err = s.mapError(getErr)
			return DeliveryGrant{}, err
		}
		err = ensureAppErrorEnvelope(
			goerrors.Wrap(getErr, goerrors.CategoryExternal, "core: credential store lookup failed").
				WithTextCode(AppErrorStoreUnavailable),
		)
		return DeliveryGrant{}, err
	}
	grant.AccessToken = credential.AccessToken
	return grant, nil
}

// deliverySiteID pulls the site identifier out of a verified payload. The
// body has already been authenticated, so a payload without one is treated
// as a siteless event, not an error.
func deliverySiteID(body []byte) string {
	var payload deliveryBody
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if site := strings.TrimSpace(payload.Site); site != "" {
		return site
	}
	return strings.TrimSpace(payload.SiteID)
}
