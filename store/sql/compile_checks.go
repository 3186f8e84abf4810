package sqlstore

import "github.com/goliatone/go-webflow/core"

var (
	_ core.CredentialStore        = (*CredentialStore)(nil)
	_ core.CredentialStoreFactory = (*RepositoryFactory)(nil)
)
