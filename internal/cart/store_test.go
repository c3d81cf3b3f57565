package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"bakehouse/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPersister is a mock implementation of Persister.
type MockPersister struct {
	mock.Mock
}

func (m *MockPersister) Load(ctx context.Context) (model.CartState, bool, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.CartState), args.Bool(1), args.Error(2)
}

func (m *MockPersister) Save(ctx context.Context, state model.CartState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func espressoLine(qty int) model.CartLine {
	return model.CartLine{
		ProductID: "espresso",
		Name:      "Espresso",
		UnitPrice: decimal.RequireFromString("2.50"),
		Quantity:  qty,
	}
}

func TestStore_AddLine(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()

	t.Run("derives line id", func(t *testing.T) {
		store := NewStore(ctx, nil, logger)

		store.AddLine(ctx, espressoLine(1))
		store.AddLine(ctx, model.CartLine{
			ProductID: "cappuccino",
			Size:      model.SizeLarge,
			UnitPrice: decimal.RequireFromString("4.25"),
			Quantity:  1,
		})

		state := store.Get()
		require.Len(t, state.Items, 2)
		assert.Equal(t, "espresso", state.Items[0].ID)
		assert.Equal(t, "cappuccino-large", state.Items[1].ID)
	})

	t.Run("merges same product and size", func(t *testing.T) {
		store := NewStore(ctx, nil, logger)

		store.AddLine(ctx, espressoLine(1))
		store.AddLine(ctx, espressoLine(2))

		state := store.Get()
		require.Len(t, state.Items, 1)
		assert.Equal(t, 3, state.Items[0].Quantity)
	})

	t.Run("same product different size stays distinct", func(t *testing.T) {
		store := NewStore(ctx, nil, logger)

		regular := model.CartLine{ProductID: "cappuccino", Size: model.SizeRegular, UnitPrice: decimal.RequireFromString("3.50"), Quantity: 1}
		large := model.CartLine{ProductID: "cappuccino", Size: model.SizeLarge, UnitPrice: decimal.RequireFromString("4.25"), Quantity: 1}
		store.AddLine(ctx, regular)
		store.AddLine(ctx, large)

		assert.Len(t, store.Get().Items, 2)
	})

	t.Run("non-positive quantity defaults to one", func(t *testing.T) {
		store := NewStore(ctx, nil, logger)

		store.AddLine(ctx, espressoLine(0))

		state := store.Get()
		require.Len(t, state.Items, 1)
		assert.Equal(t, 1, state.Items[0].Quantity)
	})

	t.Run("totals recomputed on every mutation", func(t *testing.T) {
		store := NewStore(ctx, nil, logger)

		store.AddLine(ctx, espressoLine(2))

		totals := store.Get().Totals
		assert.Equal(t, "5.00", totals.Subtotal.StringFixed(2))
		assert.Equal(t, "0.45", totals.Tax.StringFixed(2))
		assert.Equal(t, "5.45", totals.Total.StringFixed(2))
	})
}

func TestStore_SetQuantity(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()

	t.Run("sets directly", func(t *testing.T) {
		store := NewStore(ctx, nil, logger)
		store.AddLine(ctx, espressoLine(1))

		store.SetQuantity(ctx, "espresso", 5)

		state := store.Get()
		assert.Equal(t, 5, state.Items[0].Quantity)
		assert.Equal(t, "12.50", state.Totals.Subtotal.StringFixed(2))
	})

	t.Run("zero removes the line", func(t *testing.T) {
		store := NewStore(ctx, nil, logger)
		store.AddLine(ctx, espressoLine(1))

		store.SetQuantity(ctx, "espresso", 0)

		state := store.Get()
		assert.Empty(t, state.Items)
		assert.True(t, state.Totals.Total.IsZero())
	})

	t.Run("removal is idempotent", func(t *testing.T) {
		store := NewStore(ctx, nil, logger)
		store.AddLine(ctx, espressoLine(1))

		store.SetQuantity(ctx, "espresso", 0)
		before := store.Get()
		store.SetQuantity(ctx, "espresso", 0)
		after := store.Get()

		assert.Equal(t, len(before.Items), len(after.Items))
		assert.True(t, before.Totals.Total.Equal(after.Totals.Total))
	})

	t.Run("unknown line is a no-op", func(t *testing.T) {
		store := NewStore(ctx, nil, logger)
		store.AddLine(ctx, espressoLine(1))

		store.SetQuantity(ctx, "ghost", 4)

		assert.Len(t, store.Get().Items, 1)
	})
}

func TestStore_ClearAndReset(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()

	pickup := time.Date(2026, 3, 14, 14, 0, 0, 0, time.UTC)
	details := model.CustomerDetails{Name: "Anna", Email: "anna@example.com", Phone: "0612345678"}

	t.Run("clear keeps checkout progress", func(t *testing.T) {
		store := NewStore(ctx, nil, logger)
		store.AddLine(ctx, espressoLine(2))
		store.SetPickupTime(ctx, &pickup)
		store.SetCustomerDetails(ctx, details)

		store.Clear(ctx)

		state := store.Get()
		assert.Empty(t, state.Items)
		assert.True(t, state.Totals.Total.IsZero())
		require.NotNil(t, state.PickupTime)
		assert.True(t, state.PickupTime.Equal(pickup))
		require.NotNil(t, state.CustomerDetails)
		assert.Equal(t, "Anna", state.CustomerDetails.Name)
	})

	t.Run("reset drops everything", func(t *testing.T) {
		store := NewStore(ctx, nil, logger)
		store.AddLine(ctx, espressoLine(2))
		store.SetPickupTime(ctx, &pickup)
		store.SetCustomerDetails(ctx, details)

		store.Reset(ctx)

		state := store.Get()
		assert.Empty(t, state.Items)
		assert.Nil(t, state.PickupTime)
		assert.Nil(t, state.CustomerDetails)
	})
}

func TestStore_Subscribe(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, nil, zerolog.Nop())

	var seen []int
	unsubscribe := store.Subscribe(func(state model.CartState) {
		seen = append(seen, len(state.Items))
	})

	store.AddLine(ctx, espressoLine(1))
	store.AddLine(ctx, model.CartLine{ProductID: "sourdough", UnitPrice: decimal.RequireFromString("4.95"), Quantity: 1})

	require.Equal(t, []int{1, 2}, seen)

	unsubscribe()
	store.Clear(ctx)

	assert.Equal(t, []int{1, 2}, seen)
}

func TestStore_Persistence(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()

	t.Run("restores persisted state", func(t *testing.T) {
		persisted := model.CartState{
			Items:  []model.CartLine{espressoLine(2)},
			Totals: model.ZeroTotals(),
		}
		persister := new(MockPersister)
		persister.On("Load", mock.Anything).Return(persisted, true, nil)

		store := NewStore(ctx, persister, logger)

		assert.Len(t, store.Get().Items, 1)
		persister.AssertExpectations(t)
	})

	t.Run("load failure starts fresh", func(t *testing.T) {
		persister := new(MockPersister)
		persister.On("Load", mock.Anything).Return(model.CartState{}, false, errors.New("connection refused"))

		store := NewStore(ctx, persister, logger)

		assert.Empty(t, store.Get().Items)
	})

	t.Run("every mutation saves", func(t *testing.T) {
		persister := new(MockPersister)
		persister.On("Load", mock.Anything).Return(model.CartState{}, false, nil)
		persister.On("Save", mock.Anything, mock.Anything).Return(nil)

		store := NewStore(ctx, persister, logger)
		store.AddLine(ctx, espressoLine(1))
		store.SetQuantity(ctx, "espresso", 3)
		store.RemoveLine(ctx, "espresso")

		persister.AssertNumberOfCalls(t, "Save", 3)
	})

	t.Run("save failure does not lose the in-memory cart", func(t *testing.T) {
		persister := new(MockPersister)
		persister.On("Load", mock.Anything).Return(model.CartState{}, false, nil)
		persister.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))

		store := NewStore(ctx, persister, logger)
		store.AddLine(ctx, espressoLine(1))

		assert.Len(t, store.Get().Items, 1)
	})
}

func TestFilePersister_RoundTrip(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()
	path := t.TempDir() + "/cart.json"
	persister := NewFilePersister(path, logger)

	t.Run("missing file reports not found", func(t *testing.T) {
		_, found, err := persister.Load(ctx)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("save then load", func(t *testing.T) {
		pickup := time.Date(2026, 3, 14, 14, 0, 0, 0, time.UTC)
		state := model.CartState{
			Items: []model.CartLine{espressoLine(2)},
			Totals: model.Totals{
				Subtotal: decimal.RequireFromString("5.00"),
				Tax:      decimal.RequireFromString("0.45"),
				Total:    decimal.RequireFromString("5.45"),
			},
			PickupTime: &pickup,
		}

		require.NoError(t, persister.Save(ctx, state))

		loaded, found, err := persister.Load(ctx)
		require.NoError(t, err)
		require.True(t, found)
		require.Len(t, loaded.Items, 1)
		assert.Equal(t, 2, loaded.Items[0].Quantity)
		assert.True(t, loaded.Totals.Total.Equal(state.Totals.Total))
		require.NotNil(t, loaded.PickupTime)
		assert.True(t, loaded.PickupTime.Equal(pickup))
	})

	t.Run("last write wins", func(t *testing.T) {
		first := model.CartState{Items: []model.CartLine{espressoLine(1)}, Totals: model.ZeroTotals()}
		second := model.CartState{Items: []model.CartLine{espressoLine(5)}, Totals: model.ZeroTotals()}

		require.NoError(t, persister.Save(ctx, first))
		require.NoError(t, persister.Save(ctx, second))

		loaded, found, err := persister.Load(ctx)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, 5, loaded.Items[0].Quantity)
	})
}
