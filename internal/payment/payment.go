package payment

import "context"

// Intent is the provider-owned payment handle for one checkout attempt.
// ClientSecret is handed to the client to drive the provider's payment
// UI; the server keeps only the ID for confirmation and reconciliation.
type Intent struct {
	ID           string
	ClientSecret string
	AmountCents  int64
	Currency     string
	Metadata     map[string]string
}

// CreateIntentRequest sizes a new payment intent.
//
// IdempotencyKey ties the request to one cart snapshot and checkout
// attempt: the provider returns the same intent for a repeated key
// instead of minting a redundant charge target.
type CreateIntentRequest struct {
	AmountCents    int64
	Currency       string
	IdempotencyKey string
	Metadata       map[string]string
}

// Provider is the payment provider port.
type Provider interface {
	// CreateIntent creates (or, for a repeated idempotency key, returns)
	// a payment intent sized to the given amount.
	CreateIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error)

	// ConfirmIntent runs the confirmation round trip for an intent.
	// Provider decline messages are returned verbatim.
	ConfirmIntent(ctx context.Context, intentID string) error
}
