package catalog

import (
	"fmt"
	"strings"
	"sync"

	"bakehouse/internal/model"

	"github.com/shopspring/decimal"
)

// Catalog is an immutable snapshot of the menu with O(1) item lookup.
// A new snapshot is built on every (re)load; existing references stay
// valid and keep pricing against the menu they were created with.
type Catalog struct {
	menu model.Menu
	byID map[string]model.MenuItem
}

// New builds a catalog snapshot from a loaded menu document.
func New(menu model.Menu) *Catalog {
	byID := make(map[string]model.MenuItem)
	for _, category := range menu.Categories {
		for _, item := range category.Items {
			byID[item.ID] = item
		}
	}
	return &Catalog{menu: menu, byID: byID}
}

// Lookup returns the menu item with the given ID.
func (c *Catalog) Lookup(id string) (model.MenuItem, bool) {
	item, ok := c.byID[id]
	return item, ok
}

// Menu returns the full menu document for display.
func (c *Catalog) Menu() model.Menu {
	return c.menu
}

// ItemCount returns the number of items across all categories.
func (c *Catalog) ItemCount() int {
	return len(c.byID)
}

// UnitPrice resolves the canonical unit price for an item at the given
// size. Structured prices are preferred; the display string ("€12.50",
// "€2,50", "€10 | €12") is the legacy fallback.
func UnitPrice(item model.MenuItem, size model.Size) (decimal.Decimal, error) {
	if item.HasSizes && size != model.SizeNone {
		switch {
		case size == model.SizeLarge && item.PriceLarge != nil:
			return *item.PriceLarge, nil
		case size == model.SizeRegular && item.PriceRegular != nil:
			return *item.PriceRegular, nil
		}
	}
	return ParseDisplayPrice(item.Price)
}

// ParseDisplayPrice parses a display price string into a decimal amount.
// Sized items may carry a "regular | large" pair; the first value wins.
func ParseDisplayPrice(display string) (decimal.Decimal, error) {
	s := display
	if idx := strings.Index(s, "|"); idx >= 0 {
		s = s[:idx]
	}
	s = strings.ReplaceAll(s, "€", "")
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimSpace(s)

	price, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price format %q: %w", display, err)
	}
	return price, nil
}

// Holder hands out the current catalog snapshot and allows it to be
// replaced atomically on reload.
type Holder struct {
	mu      sync.RWMutex
	current *Catalog
}

// NewHolder creates a holder with an initial snapshot.
func NewHolder(c *Catalog) *Holder {
	return &Holder{current: c}
}

// Current returns the latest catalog snapshot.
func (h *Holder) Current() *Catalog {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Replace swaps in a new snapshot.
func (h *Holder) Replace(c *Catalog) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = c
}
