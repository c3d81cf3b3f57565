package model

import (
	"time"

	"github.com/google/uuid"
)

// Order is the immutable snapshot built once payment is confirmed.
//
// ID is the authoritative, collision-resistant identifier. Code is the
// short human-readable reference ("WNB-1234") printed on receipts and
// attached to the payment intent metadata; it is display-only and not
// guaranteed unique.
type Order struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	Code       string          `json:"code" db:"code"`
	Items      []CartLine      `json:"items"`
	Totals     Totals          `json:"totals"`
	PickupTime time.Time       `json:"pickupTime" db:"pickup_time"`
	Customer   CustomerDetails `json:"customerDetails"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
}

// PaymentIntentRequest is the payload for POST /api/create-payment-intent.
// Only product identity, size and quantity are read; any client-supplied
// price is ignored.
type PaymentIntentRequest struct {
	Items []PaymentIntentItem `json:"items"`
}

// PaymentIntentItem is a single cart line in a payment-intent request.
type PaymentIntentItem struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Size      Size   `json:"size"`
	Quantity  int    `json:"quantity"`
}

// PaymentIntentResponse is the success payload for POST /api/create-payment-intent.
type PaymentIntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	OrderID         string `json:"orderId"`
	CalculatedTotal string `json:"calculatedTotal"`
}

// SendEmailRequest is the payload for POST /api/send-email.
type SendEmailRequest struct {
	Email        string       `json:"email"`
	OrderDetails OrderDetails `json:"orderDetails"`
	PickupTime   string       `json:"pickupTime"`
}

// OrderDetails is the order snapshot carried in a send-email request.
type OrderDetails struct {
	OrderID  string           `json:"orderId,omitempty"`
	Items    []CartLine       `json:"items"`
	Totals   Totals           `json:"totals"`
	Customer *CustomerDetails `json:"customerDetails,omitempty"`
}
