package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"bakehouse/internal/model"
	"bakehouse/internal/notify"

	"github.com/rs/zerolog"
)

// EmailHandler handles order confirmation email requests. Sends are
// best-effort: the order is already final by the time this is called.
type EmailHandler struct {
	notifier notify.Notifier
	logger   zerolog.Logger
}

// NewEmailHandler creates a new email handler.
func NewEmailHandler(notifier notify.Notifier, logger zerolog.Logger) *EmailHandler {
	return &EmailHandler{
		notifier: notifier,
		logger:   logger.With().Str("handler", "email").Logger(),
	}
}

// Send handles POST /api/send-email requests.
func (h *EmailHandler) Send(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	var req model.SendEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email required", h.logger)
		return
	}

	receipt := notify.Receipt{
		Email:     req.Email,
		OrderCode: req.OrderDetails.OrderID,
		Items:     req.OrderDetails.Items,
		Totals:    req.OrderDetails.Totals,
	}
	if req.OrderDetails.Customer != nil {
		receipt.CustomerName = req.OrderDetails.Customer.Name
	}
	if req.PickupTime != "" {
		pickup, err := time.Parse(time.RFC3339, req.PickupTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid pickup time", h.logger)
			return
		}
		receipt.PickupTime = pickup
	}

	if err := h.notifier.SendReceipt(r.Context(), receipt); err != nil {
		h.logger.Error().Err(err).Str("email", req.Email).Msg("failed to send receipt")
		writeError(w, http.StatusInternalServerError, "failed to send email", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]string{"status": "sent"},
	})
}
