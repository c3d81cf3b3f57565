package router

import (
	"net/http"

	"bakehouse/internal/handler"
	"bakehouse/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	paymentIntentHandler *handler.PaymentIntentHandler,
	emailHandler *handler.EmailHandler,
	menuHandler *handler.MenuHandler,
	orderHandler *handler.OrderHandler,
	timeslotHandler *handler.TimeslotHandler,
	adminAPIKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	mux.HandleFunc("/api/create-payment-intent", paymentIntentHandler.Create)
	mux.HandleFunc("/api/send-email", emailHandler.Send)
	mux.HandleFunc("/api/menu", menuHandler.GetMenu)
	mux.HandleFunc("/api/pickup-slots", timeslotHandler.GetSlots)
	mux.HandleFunc("/api/admin/reload-catalog", menuHandler.ReloadCatalog)

	// Order lookup: /api/orders/{id}
	mux.HandleFunc("/api/orders/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/orders/" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		orderHandler.GetByID(w, r)
	})

	// Apply middleware in order: Recovery -> Logging -> CORS -> AdminAuth
	var h http.Handler = mux
	h = middleware.AdminAuth(adminAPIKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
