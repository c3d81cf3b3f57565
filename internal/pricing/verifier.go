package pricing

import (
	"context"

	"bakehouse/internal/catalog"
	"bakehouse/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// TaxRate is the fixed 9% BTW applied to the subtotal.
var TaxRate = decimal.NewFromFloat(0.09)

// MinimumTotal is the smallest amount the payment provider accepts.
var MinimumTotal = decimal.NewFromFloat(0.50)

// CatalogSource hands out the catalog snapshot to price against.
type CatalogSource interface {
	Current() *catalog.Catalog
}

// Line is one requested cart line. Client-supplied prices never reach
// the verifier; only identity, size and quantity are read.
type Line struct {
	ProductID string
	Size      model.Size
	Quantity  int
}

// Quote is the authoritative pricing result for a cart snapshot.
type Quote struct {
	Totals    model.Totals
	ItemCount int
	Skipped   []string
}

// Verifier recomputes a cart's totals from canonical catalog prices.
type Verifier struct {
	catalogs CatalogSource
	logger   zerolog.Logger
}

// NewVerifier creates a new price verifier.
func NewVerifier(catalogs CatalogSource, logger zerolog.Logger) *Verifier {
	return &Verifier{
		catalogs: catalogs,
		logger:   logger.With().Str("component", "price-verifier").Logger(),
	}
}

// Verify prices the requested lines against the current catalog.
//
// Lines referencing unknown products are skipped with a warning rather
// than failing the whole request, matching the storefront's lenient
// policy. Subtotal and tax are each rounded to 2 decimals at the point
// of computation so the reported sub-amounts are internally consistent.
func (v *Verifier) Verify(ctx context.Context, lines []Line) (*Quote, error) {
	if len(lines) == 0 {
		return nil, model.ErrEmptyCart
	}

	cat := v.catalogs.Current()
	subtotal := decimal.Zero
	itemCount := 0
	var skipped []string

	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, model.ErrInvalidQuantity
		}

		item, ok := cat.Lookup(line.ProductID)
		if !ok {
			v.logger.Warn().
				Str("product_id", line.ProductID).
				Msg("item not found in catalog, skipping line")
			skipped = append(skipped, line.ProductID)
			continue
		}

		unit, err := catalog.UnitPrice(item, line.Size)
		if err != nil {
			v.logger.Error().
				Err(err).
				Str("product_id", line.ProductID).
				Str("display_price", item.Price).
				Msg("invalid price format, skipping line")
			skipped = append(skipped, line.ProductID)
			continue
		}

		subtotal = subtotal.Add(unit.Mul(decimal.NewFromInt(int64(line.Quantity))))
		itemCount += line.Quantity
	}

	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(TaxRate).Round(2)
	total := subtotal.Add(tax)

	if total.LessThan(MinimumTotal) {
		v.logger.Warn().
			Str("total", total.StringFixed(2)).
			Int("skipped_count", len(skipped)).
			Msg("verified total below minimum payable amount")
		return nil, model.ErrBelowMinimum
	}

	return &Quote{
		Totals: model.Totals{
			Subtotal: subtotal,
			Tax:      tax,
			Total:    total,
		},
		ItemCount: itemCount,
		Skipped:   skipped,
	}, nil
}
