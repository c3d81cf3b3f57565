package model

import "github.com/shopspring/decimal"

// MenuItem represents a purchasable item in the catalogue.
//
// Price is the display string shown to customers (e.g. "€12.50" or
// "€10 | €12" for sized items). Structured prices are preferred for
// anything money-related; the display string is a legacy fallback.
type MenuItem struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description,omitempty"`
	Price        string           `json:"price"`
	HasSizes     bool             `json:"hasSizes,omitempty"`
	PriceRegular *decimal.Decimal `json:"priceRegular,omitempty"`
	PriceLarge   *decimal.Decimal `json:"priceLarge,omitempty"`
	Tags         []string         `json:"tags,omitempty"`
	Allergens    []string         `json:"allergens,omitempty"`
	Image        string           `json:"image,omitempty"`
}

// MenuCategory groups menu items for display.
type MenuCategory struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Items       []MenuItem `json:"items"`
}

// Menu is the full catalogue document as loaded from its source.
type Menu struct {
	Categories []MenuCategory `json:"categories"`
}
