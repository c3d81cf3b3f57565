package handler

import (
	"net/http"

	"bakehouse/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles order lookup requests.
type OrderHandler struct {
	orders repository.OrderRepository
	logger zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders repository.OrderRepository, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger.With().Str("handler", "order").Logger(),
	}
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	// Expecting path: /api/orders/{id}
	path := r.URL.Path
	if len(path) <= len("/api/orders/") {
		writeError(w, http.StatusBadRequest, "order ID is required", h.logger)
		return
	}
	orderIDStr := path[len("/api/orders/"):]

	orderID, err := uuid.Parse(orderIDStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID format", h.logger)
		return
	}

	order, err := h.orders.GetByID(r.Context(), orderID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve order", h.logger)
		return
	}

	if order == nil {
		writeError(w, http.StatusNotFound, "order not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
