// Package inbound exposes the HTTP surface of the integration: the
// webhook delivery endpoint and the install redirect endpoint. Handlers
// translate transport concerns into service calls and render rich error
// envelopes as JSON.
package inbound
