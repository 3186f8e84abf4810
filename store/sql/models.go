package sqlstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-webflow/core"
)

type siteCredentialRecord struct {
	bun.BaseModel `bun:"table:webflow_site_credentials,alias:wsc"`

	ID          string    `bun:"id,pk"`
	SiteID      string    `bun:"site_id,notnull,unique"`
	AccessToken string    `bun:"access_token,notnull"`
	InstalledAt time.Time `bun:"installed_at,nullzero,notnull,default:current_timestamp"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (r *siteCredentialRecord) toDomain() core.SiteCredential {
	if r == nil {
		return core.SiteCredential{}
	}
	return core.SiteCredential{
		SiteID:      r.SiteID,
		AccessToken: r.AccessToken,
		InstalledAt: r.InstalledAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
