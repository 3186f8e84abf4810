// Package sqlstore persists site credentials behind the core store
// contracts using bun repositories.
package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-webflow/core"
)

type CredentialStore struct {
	db   *bun.DB
	repo repository.Repository[*siteCredentialRecord]
}

// Put stores the site to token binding. Reinstalls overwrite: the newest
// token for a site always wins.
func (s *CredentialStore) Put(ctx context.Context, credential core.SiteCredential) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: credential store is not configured")
	}
	if err := credential.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	installedAt := credential.InstalledAt
	if installedAt.IsZero() {
		installedAt = now
	}
	record := &siteCredentialRecord{
		ID:          uuid.NewString(),
		SiteID:      strings.TrimSpace(credential.SiteID),
		AccessToken: strings.TrimSpace(credential.AccessToken),
		InstalledAt: installedAt.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (site_id) DO UPDATE").
		Set("access_token = EXCLUDED.access_token").
		Set("installed_at = EXCLUDED.installed_at").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("sqlstore: put credential: %w", err)
	}
	return nil
}

func (s *CredentialStore) Get(ctx context.Context, siteID string) (core.SiteCredential, error) {
	if s == nil || s.repo == nil {
		return core.SiteCredential{}, fmt.Errorf("sqlstore: credential store is not configured")
	}
	siteID = strings.TrimSpace(siteID)
	if siteID == "" {
		return core.SiteCredential{}, fmt.Errorf("sqlstore: site id is required")
	}

	records, _, err := s.repo.List(ctx,
		repository.SelectBy("site_id", "=", siteID),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.SiteCredential{}, err
	}
	if len(records) == 0 {
		return core.SiteCredential{}, core.ErrCredentialNotFound
	}
	return records[0].toDomain(), nil
}

func (s *CredentialStore) List(ctx context.Context) ([]core.SiteCredential, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: credential store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.OrderBy("site_id ASC"),
	)
	if err != nil {
		return nil, err
	}
	credentials := make([]core.SiteCredential, 0, len(records))
	for _, record := range records {
		credentials = append(credentials, record.toDomain())
	}
	return credentials, nil
}

func (s *CredentialStore) Delete(ctx context.Context, siteID string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: credential store is not configured")
	}
	siteID = strings.TrimSpace(siteID)
	if siteID == "" {
		return fmt.Errorf("sqlstore: site id is required")
	}
	_, err := s.db.NewDelete().
		Model((*siteCredentialRecord)(nil)).
		Where("site_id = ?", siteID).
		Exec(ctx)
	return err
}
