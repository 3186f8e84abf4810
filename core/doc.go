// Package core contains the application service for a Webflow platform
// integration: the OAuth install flow, webhook provisioning across the
// authorizing user's sites, the credential store contract, and delivery
// authorization for inbound webhooks.
package core
