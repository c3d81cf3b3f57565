package pricing

import (
	"context"
	"testing"

	"bakehouse/internal/catalog"
	"bakehouse/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func testCatalog() *catalog.Holder {
	menu := model.Menu{
		Categories: []model.MenuCategory{
			{
				ID:   "coffee",
				Name: "Koffie",
				Items: []model.MenuItem{
					{ID: "espresso", Name: "Espresso", Price: "€2.50"},
					{
						ID:           "cappuccino",
						Name:         "Cappuccino",
						Price:        "€3.50 | €4.25",
						HasSizes:     true,
						PriceRegular: decPtr("3.50"),
						PriceLarge:   decPtr("4.25"),
					},
					{ID: "comma-price", Name: "Filterkoffie", Price: "€2,75"},
					{ID: "broken-price", Name: "Mystery", Price: "gratis"},
				},
			},
			{
				ID:   "bread",
				Name: "Brood",
				Items: []model.MenuItem{
					{ID: "sourdough", Name: "Desembrood", Price: "€4.95"},
				},
			},
		},
	}
	return catalog.NewHolder(catalog.New(menu))
}

func TestVerifier_Verify(t *testing.T) {
	verifier := NewVerifier(testCatalog(), zerolog.Nop())
	ctx := context.Background()

	t.Run("single product totals", func(t *testing.T) {
		quote, err := verifier.Verify(ctx, []Line{
			{ProductID: "espresso", Quantity: 2},
		})

		require.NoError(t, err)
		assert.Equal(t, "5.00", quote.Totals.Subtotal.StringFixed(2))
		assert.Equal(t, "0.45", quote.Totals.Tax.StringFixed(2))
		assert.Equal(t, "5.45", quote.Totals.Total.StringFixed(2))
		assert.Equal(t, 2, quote.ItemCount)
		assert.Empty(t, quote.Skipped)
	})

	t.Run("mixed cart totals", func(t *testing.T) {
		quote, err := verifier.Verify(ctx, []Line{
			{ProductID: "espresso", Quantity: 1},
			{ProductID: "sourdough", Quantity: 2},
		})

		require.NoError(t, err)
		// 2.50 + 9.90 = 12.40; tax 1.116 -> 1.12
		assert.Equal(t, "12.40", quote.Totals.Subtotal.StringFixed(2))
		assert.Equal(t, "1.12", quote.Totals.Tax.StringFixed(2))
		assert.Equal(t, "13.52", quote.Totals.Total.StringFixed(2))
		assert.Equal(t, 3, quote.ItemCount)
	})

	t.Run("size variants price independently", func(t *testing.T) {
		quote, err := verifier.Verify(ctx, []Line{
			{ProductID: "cappuccino", Size: model.SizeRegular, Quantity: 1},
			{ProductID: "cappuccino", Size: model.SizeLarge, Quantity: 1},
		})

		require.NoError(t, err)
		assert.Equal(t, "7.75", quote.Totals.Subtotal.StringFixed(2))
	})

	t.Run("sized item without size uses display fallback", func(t *testing.T) {
		quote, err := verifier.Verify(ctx, []Line{
			{ProductID: "cappuccino", Quantity: 1},
		})

		require.NoError(t, err)
		// "€3.50 | €4.25" parses to the first value.
		assert.Equal(t, "3.50", quote.Totals.Subtotal.StringFixed(2))
	})

	t.Run("comma decimal display price", func(t *testing.T) {
		quote, err := verifier.Verify(ctx, []Line{
			{ProductID: "comma-price", Quantity: 2},
		})

		require.NoError(t, err)
		assert.Equal(t, "5.50", quote.Totals.Subtotal.StringFixed(2))
	})

	t.Run("unknown product skipped", func(t *testing.T) {
		quote, err := verifier.Verify(ctx, []Line{
			{ProductID: "espresso", Quantity: 2},
			{ProductID: "no-such-item", Quantity: 1},
		})

		require.NoError(t, err)
		assert.Equal(t, "5.00", quote.Totals.Subtotal.StringFixed(2))
		assert.Equal(t, 2, quote.ItemCount)
		assert.Equal(t, []string{"no-such-item"}, quote.Skipped)
	})

	t.Run("unparseable price skipped", func(t *testing.T) {
		quote, err := verifier.Verify(ctx, []Line{
			{ProductID: "espresso", Quantity: 1},
			{ProductID: "broken-price", Quantity: 1},
		})

		require.NoError(t, err)
		assert.Equal(t, "2.50", quote.Totals.Subtotal.StringFixed(2))
		assert.Equal(t, []string{"broken-price"}, quote.Skipped)
	})

	t.Run("empty cart rejected", func(t *testing.T) {
		quote, err := verifier.Verify(ctx, nil)

		assert.Nil(t, quote)
		assert.ErrorIs(t, err, model.ErrEmptyCart)
	})

	t.Run("non-positive quantity rejected", func(t *testing.T) {
		for _, qty := range []int{0, -1} {
			quote, err := verifier.Verify(ctx, []Line{
				{ProductID: "espresso", Quantity: qty},
			})

			assert.Nil(t, quote)
			assert.ErrorIs(t, err, model.ErrInvalidQuantity)
		}
	})

	t.Run("all lines skipped falls below minimum", func(t *testing.T) {
		quote, err := verifier.Verify(ctx, []Line{
			{ProductID: "ghost-1", Quantity: 1},
			{ProductID: "ghost-2", Quantity: 3},
		})

		assert.Nil(t, quote)
		assert.ErrorIs(t, err, model.ErrBelowMinimum)
	})
}

func TestVerifier_VerifyUsesCurrentSnapshot(t *testing.T) {
	holder := testCatalog()
	verifier := NewVerifier(holder, zerolog.Nop())
	ctx := context.Background()

	quote, err := verifier.Verify(ctx, []Line{{ProductID: "espresso", Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, "2.50", quote.Totals.Subtotal.StringFixed(2))

	// Replace the catalog with a new price; the verifier picks it up.
	holder.Replace(catalog.New(model.Menu{
		Categories: []model.MenuCategory{
			{ID: "coffee", Name: "Koffie", Items: []model.MenuItem{
				{ID: "espresso", Name: "Espresso", Price: "€2.80"},
			}},
		},
	}))

	quote, err = verifier.Verify(ctx, []Line{{ProductID: "espresso", Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, "2.80", quote.Totals.Subtotal.StringFixed(2))
}
