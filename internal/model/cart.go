package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Size is an optional variant dimension that changes an item's price
// but not its identity.
type Size string

const (
	SizeNone    Size = ""
	SizeRegular Size = "regular"
	SizeLarge   Size = "large"
)

// Valid reports whether the size is one of the known variants.
func (s Size) Valid() bool {
	return s == SizeNone || s == SizeRegular || s == SizeLarge
}

// CartLine is one product-and-size combination with a quantity.
//
// ID is derived from the product ID and size so the same product at
// different sizes occupies distinct lines. UnitPrice is the client-side
// display price; it is advisory only and is never trusted for payment.
type CartLine struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Size      Size            `json:"size,omitempty"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
}

// LineID derives the cart line identifier for a product and size.
func LineID(productID string, size Size) string {
	if size == SizeNone {
		return productID
	}
	return productID + "-" + string(size)
}

// Totals is the derived money summary of a cart.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// ZeroTotals returns totals with all amounts at zero.
func ZeroTotals() Totals {
	return Totals{
		Subtotal: decimal.Zero,
		Tax:      decimal.Zero,
		Total:    decimal.Zero,
	}
}

// CustomerDetails holds the contact details collected at checkout.
type CustomerDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// CartState is the persisted cart record: line items, derived totals,
// and any checkout progress (pickup time, customer details).
type CartState struct {
	Items           []CartLine       `json:"items"`
	Totals          Totals           `json:"totals"`
	PickupTime      *time.Time       `json:"pickupTime,omitempty"`
	CustomerDetails *CustomerDetails `json:"customerDetails,omitempty"`
}
