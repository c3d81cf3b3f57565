package notify

import (
	"context"
	"time"

	"bakehouse/internal/model"

	"github.com/rs/zerolog"
)

// Receipt is the order confirmation sent to a customer. Delivery is
// best-effort: a failed send never blocks order completion.
type Receipt struct {
	Email        string
	CustomerName string
	OrderCode    string
	PickupTime   time.Time
	Items        []model.CartLine
	Totals       model.Totals
}

// Notifier sends order confirmations.
type Notifier interface {
	SendReceipt(ctx context.Context, receipt Receipt) error
}

// nopNotifier logs receipts instead of sending them. Used when no email
// provider is configured.
type nopNotifier struct {
	logger zerolog.Logger
}

// NewNopNotifier creates a notifier that only logs.
func NewNopNotifier(logger zerolog.Logger) Notifier {
	return &nopNotifier{logger: logger.With().Str("component", "notifier").Logger()}
}

func (n *nopNotifier) SendReceipt(ctx context.Context, receipt Receipt) error {
	n.logger.Info().
		Str("email", receipt.Email).
		Str("order_code", receipt.OrderCode).
		Msg("email disabled, receipt not sent")
	return nil
}
