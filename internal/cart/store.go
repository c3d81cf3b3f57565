package cart

import (
	"context"
	"sync"
	"time"

	"bakehouse/internal/model"
	"bakehouse/internal/pricing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Store holds one customer's cart. It is constructor-injected (no
// package-level state), so independent instances can coexist in tests
// and across sessions.
//
// Totals are recomputed synchronously on every mutation from the lines'
// advisory unit prices; they are display values only and are re-verified
// server-side before any payment is created. Every mutation writes
// through to the persister; persistence failures are logged and
// swallowed so the cart keeps working in-memory.
type Store struct {
	mu        sync.Mutex
	state     model.CartState
	persister Persister
	logger    zerolog.Logger

	nextSub int
	subs    map[int]func(model.CartState)
}

// NewStore creates a cart store, restoring any persisted record.
func NewStore(ctx context.Context, persister Persister, logger zerolog.Logger) *Store {
	s := &Store{
		state:     model.CartState{Totals: model.ZeroTotals()},
		persister: persister,
		logger:    logger.With().Str("component", "cart-store").Logger(),
		subs:      make(map[int]func(model.CartState)),
	}

	if persister != nil {
		state, found, err := persister.Load(ctx)
		if err != nil {
			// Storage problems never surface to the customer; the cart
			// simply starts fresh.
			s.logger.Error().Err(err).Msg("failed to load persisted cart, starting fresh")
		} else if found {
			s.state = state
			s.logger.Debug().Int("item_count", len(state.Items)).Msg("cart restored")
		}
	}

	return s
}

// Get returns a snapshot of the current cart state.
func (s *Store) Get() model.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneState(s.state)
}

// Mutate applies fn to the cart state under the store lock, recomputes
// totals, persists the result, and notifies subscribers. All named cart
// operations are built on this primitive.
func (s *Store) Mutate(ctx context.Context, fn func(*model.CartState)) {
	s.mu.Lock()
	fn(&s.state)
	s.state.Totals = computeTotals(s.state.Items)
	snapshot := cloneState(s.state)
	s.mu.Unlock()

	if s.persister != nil {
		if err := s.persister.Save(ctx, snapshot); err != nil {
			s.logger.Error().Err(err).Msg("failed to persist cart")
		}
	}

	s.mu.Lock()
	subs := make([]func(model.CartState), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

// Subscribe registers a callback invoked with a snapshot after every
// mutation. The returned function unsubscribes.
func (s *Store) Subscribe(fn func(model.CartState)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// AddLine adds quantity of a product at the given size. A line for the
// same (product, size) pair is incremented rather than duplicated. The
// line carries the catalog display details purely for rendering.
func (s *Store) AddLine(ctx context.Context, line model.CartLine) {
	if line.Quantity <= 0 {
		line.Quantity = 1
	}
	line.ID = model.LineID(line.ProductID, line.Size)

	s.Mutate(ctx, func(state *model.CartState) {
		for i := range state.Items {
			if state.Items[i].ID == line.ID {
				state.Items[i].Quantity += line.Quantity
				return
			}
		}
		state.Items = append(state.Items, line)
	})
}

// SetQuantity sets a line's quantity directly. Zero or negative removes
// the line; removing an absent line is a no-op.
func (s *Store) SetQuantity(ctx context.Context, lineID string, quantity int) {
	if quantity <= 0 {
		s.RemoveLine(ctx, lineID)
		return
	}
	s.Mutate(ctx, func(state *model.CartState) {
		for i := range state.Items {
			if state.Items[i].ID == lineID {
				state.Items[i].Quantity = quantity
				return
			}
		}
	})
}

// RemoveLine removes a line. Always succeeds, even if absent.
func (s *Store) RemoveLine(ctx context.Context, lineID string) {
	s.Mutate(ctx, func(state *model.CartState) {
		for i := range state.Items {
			if state.Items[i].ID == lineID {
				state.Items = append(state.Items[:i], state.Items[i+1:]...)
				return
			}
		}
	})
}

// Clear empties the cart lines and resets totals. Pickup time and
// customer details are kept; use Reset to drop those too.
func (s *Store) Clear(ctx context.Context) {
	s.Mutate(ctx, func(state *model.CartState) {
		state.Items = nil
	})
}

// Reset empties the cart including pickup time and customer details,
// as on successful order completion.
func (s *Store) Reset(ctx context.Context) {
	s.Mutate(ctx, func(state *model.CartState) {
		state.Items = nil
		state.PickupTime = nil
		state.CustomerDetails = nil
	})
}

// SetPickupTime records the selected pickup instant (nil clears it).
func (s *Store) SetPickupTime(ctx context.Context, t *time.Time) {
	s.Mutate(ctx, func(state *model.CartState) {
		if t == nil {
			state.PickupTime = nil
			return
		}
		instant := *t
		state.PickupTime = &instant
	})
}

// SetCustomerDetails records the checkout contact details.
func (s *Store) SetCustomerDetails(ctx context.Context, details model.CustomerDetails) {
	s.Mutate(ctx, func(state *model.CartState) {
		d := details
		state.CustomerDetails = &d
	})
}

// computeTotals derives display totals from advisory line prices.
func computeTotals(items []model.CartLine) model.Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(pricing.TaxRate).Round(2)
	return model.Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

func cloneState(state model.CartState) model.CartState {
	out := state
	out.Items = make([]model.CartLine, len(state.Items))
	copy(out.Items, state.Items)
	if state.PickupTime != nil {
		t := *state.PickupTime
		out.PickupTime = &t
	}
	if state.CustomerDetails != nil {
		d := *state.CustomerDetails
		out.CustomerDetails = &d
	}
	return out
}
