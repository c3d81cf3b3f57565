package handler

import (
	"encoding/json"
	"net/http"

	"bakehouse/internal/model"
	"bakehouse/internal/pricing"

	"github.com/rs/zerolog"
)

// attemptIDHeader lets a client scope intent idempotency to one checkout
// attempt. Absent, every request gets its own intent.
const attemptIDHeader = "X-Checkout-Attempt"

// PaymentIntentHandler handles price verification and intent creation.
type PaymentIntentHandler struct {
	issuer *pricing.Issuer
	logger zerolog.Logger
}

// NewPaymentIntentHandler creates a new payment intent handler.
func NewPaymentIntentHandler(issuer *pricing.Issuer, logger zerolog.Logger) *PaymentIntentHandler {
	return &PaymentIntentHandler{
		issuer: issuer,
		logger: logger.With().Str("handler", "payment-intent").Logger(),
	}
}

// Create handles POST /api/create-payment-intent requests. The cart is
// re-priced server-side from the catalog; client-sent prices are never
// trusted.
func (h *PaymentIntentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	var req model.PaymentIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, model.ErrEmptyCart.Message, h.logger)
		return
	}

	lines := make([]pricing.Line, len(req.Items))
	for i, item := range req.Items {
		productID := item.ProductID
		if productID == "" {
			// Older clients sent only the cart line ID for unsized items.
			productID = item.ID
		}
		if !item.Size.Valid() {
			writeError(w, http.StatusBadRequest, "invalid size variant", h.logger)
			return
		}
		lines[i] = pricing.Line{
			ProductID: productID,
			Size:      item.Size,
			Quantity:  item.Quantity,
		}
	}

	issued, err := h.issuer.Issue(r.Context(), lines, r.Header.Get(attemptIDHeader))
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.PaymentIntentResponse{
		ClientSecret:    issued.Intent.ClientSecret,
		OrderID:         issued.OrderCode,
		CalculatedTotal: issued.Quote.Totals.Total.StringFixed(2),
	})
}
