// Package webhooks contains the delivery trust boundary: signature and
// freshness verification for inbound platform webhooks.
//
// Verification is a stateless, single-shot computation. A rejection is a
// normal negative outcome, never a fault; callers map it to a 403 response.
// A signature replayed inside the freshness window is indistinguishable from
// a fresh delivery. No dedupe ledger is kept here; that is a known residual
// risk of the scheme.
package webhooks
