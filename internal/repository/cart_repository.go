package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bakehouse/internal/cart"
	"bakehouse/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository persists cart records in PostgreSQL, one row per cart,
// the whole record as JSONB. It implements cart.Persister. Saves are
// upserts with last-write-wins semantics: two sessions writing the same
// cart ID overwrite each other, and that is the documented behaviour.
type cartRepository struct {
	pool   *pgxpool.Pool
	cartID string
	logger zerolog.Logger
}

// NewCartRepository creates a PostgreSQL-backed cart persister scoped to
// one cart ID.
func NewCartRepository(pool *pgxpool.Pool, cartID string, logger zerolog.Logger) cart.Persister {
	return &cartRepository{
		pool:   pool,
		cartID: cartID,
		logger: logger.With().Str("repository", "cart").Str("cart_id", cartID).Logger(),
	}
}

// Load reads the persisted cart record.
func (r *cartRepository) Load(ctx context.Context) (model.CartState, bool, error) {
	query := `SELECT payload FROM carts WHERE id = $1`

	var payload []byte
	err := r.pool.QueryRow(ctx, query, r.cartID).Scan(&payload)
	if err != nil {
		if err == pgx.ErrNoRows {
			return model.CartState{Totals: model.ZeroTotals()}, false, nil
		}
		r.logger.Error().Err(err).Msg("failed to query cart")
		return model.CartState{}, false, fmt.Errorf("failed to query cart: %w", err)
	}

	var state model.CartState
	if err := json.Unmarshal(payload, &state); err != nil {
		r.logger.Error().Err(err).Msg("failed to decode cart payload")
		return model.CartState{}, false, fmt.Errorf("failed to decode cart payload: %w", err)
	}

	return state, true, nil
}

// Save upserts the complete cart record.
func (r *cartRepository) Save(ctx context.Context, state model.CartState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode cart state: %w", err)
	}

	query := `
		INSERT INTO carts (id, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.pool.Exec(ctx, query, r.cartID, payload, time.Now()); err != nil {
		r.logger.Error().Err(err).Msg("failed to upsert cart")
		return fmt.Errorf("failed to upsert cart: %w", err)
	}

	return nil
}
