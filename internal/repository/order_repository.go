package repository

import (
	"context"
	"fmt"

	"bakehouse/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, code, subtotal, tax, total, pickup_time,
			customer_name, customer_email, customer_phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := tx.Exec(ctx, query,
		order.ID, order.Code,
		order.Totals.Subtotal, order.Totals.Tax, order.Totals.Total,
		order.PickupTime,
		order.Customer.Name, order.Customer.Email, order.Customer.Phone,
		order.CreatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to insert order")
		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

// CreateOrderItems inserts the order's line items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, items []model.CartLine) error {
	query := `
		INSERT INTO order_items (id, order_id, line_id, product_id, name, size, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for _, item := range items {
		_, err := tx.Exec(ctx, query,
			uuid.New(), orderID,
			item.ID, item.ProductID, item.Name, string(item.Size),
			item.UnitPrice, item.Quantity,
		)
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", orderID.String()).
				Str("line_id", item.ID).
				Msg("failed to insert order item")
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `
		SELECT id, code, subtotal, tax, total, pickup_time,
			customer_name, customer_email, customer_phone, created_at
		FROM orders
		WHERE id = $1
	`

	var order model.Order
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&order.ID, &order.Code,
		&order.Totals.Subtotal, &order.Totals.Tax, &order.Totals.Total,
		&order.PickupTime,
		&order.Customer.Name, &order.Customer.Email, &order.Customer.Phone,
		&order.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	itemsQuery := `
		SELECT line_id, product_id, name, size, unit_price, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY line_id
	`

	rows, err := r.pool.Query(ctx, itemsQuery, id)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.CartLine
		var size string
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Name, &size, &item.UnitPrice, &item.Quantity); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		item.Size = model.Size(size)
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return &order, nil
}
