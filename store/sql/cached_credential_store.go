package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-webflow/core"
)

const siteCredentialCacheKeyPrefix = "go-webflow::site_credentials::v1"

// CachedCredentialStore serves credential reads through a cache and
// invalidates on every write so a reinstall is visible immediately.
type CachedCredentialStore struct {
	base  core.CredentialStore
	cache repositorycache.CacheService
}

func NewCachedCredentialStore(
	base core.CredentialStore,
	cacheService repositorycache.CacheService,
) (*CachedCredentialStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base credential store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: credential cache service is required")
	}
	return &CachedCredentialStore{base: base, cache: cacheService}, nil
}

// SiteCredentialCacheKey returns the deterministic cache key for one site's
// credential: go-webflow::site_credentials::v1::<site_id> with the site id
// URL-path escaped.
func SiteCredentialCacheKey(siteID string) (string, error) {
	siteID = strings.TrimSpace(siteID)
	if siteID == "" {
		return "", fmt.Errorf("sqlstore: site id is required")
	}
	return siteCredentialCacheKeyPrefix + "::" + url.PathEscape(siteID), nil
}

func (s *CachedCredentialStore) Put(ctx context.Context, credential core.SiteCredential) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached credential store is not configured")
	}
	if err := s.base.Put(ctx, credential); err != nil {
		return err
	}
	cacheKey, err := SiteCredentialCacheKey(credential.SiteID)
	if err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		return err
	}
	return nil
}

func (s *CachedCredentialStore) Get(ctx context.Context, siteID string) (core.SiteCredential, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.SiteCredential{}, fmt.Errorf("sqlstore: cached credential store is not configured")
	}
	cacheKey, err := SiteCredentialCacheKey(siteID)
	if err != nil {
		return core.SiteCredential{}, err
	}

	credential, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (core.SiteCredential, error) {
		return s.base.Get(ctx, strings.TrimSpace(siteID))
	})
	if err != nil {
		return core.SiteCredential{}, err
	}
	return credential, nil
}

// List always reads through to the base store; listings are rare and must
// see every site.
func (s *CachedCredentialStore) List(ctx context.Context) ([]core.SiteCredential, error) {
	if s == nil || s.base == nil {
		return nil, fmt.Errorf("sqlstore: cached credential store is not configured")
	}
	return s.base.List(ctx)
}

func (s *CachedCredentialStore) Delete(ctx context.Context, siteID string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached credential store is not configured")
	}
	if err := s.base.Delete(ctx, siteID); err != nil {
		return err
	}
	cacheKey, err := SiteCredentialCacheKey(siteID)
	if err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}

var _ core.CredentialStore = (*CachedCredentialStore)(nil)
