package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"bakehouse/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: message})
}

// writeDomainError maps a domain error to an HTTP response. Anything the
// customer can correct is a 400 with the message passed through; the
// rest is a 500.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case model.ErrCodeEmptyCart,
			model.ErrCodeBelowMinimum,
			model.ErrCodeValidation,
			model.ErrCodeInvalidSelection,
			model.ErrCodeProductNotFound:
			writeError(w, http.StatusBadRequest, domainErr.Message, logger)
			return
		case model.ErrCodePaymentFailed:
			writeError(w, http.StatusInternalServerError, domainErr.Message, logger)
			return
		}
	}
	writeError(w, http.StatusInternalServerError, "Internal Server Error", logger)
}
