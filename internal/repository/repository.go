package repository

import (
	"context"

	"bakehouse/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrderRepository defines data access for confirmed orders. Orders are
// written exactly once, at payment confirmation, and never updated.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts the order's line items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, items []model.CartLine) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
}
