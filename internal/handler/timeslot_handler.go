package handler

import (
	"net/http"
	"time"

	"bakehouse/internal/schedule"

	"github.com/rs/zerolog"
)

// TimeslotHandler serves the pickup slot grid for the current day.
type TimeslotHandler struct {
	generator *schedule.Generator
	now       func() time.Time
	logger    zerolog.Logger
}

// NewTimeslotHandler creates a new timeslot handler.
func NewTimeslotHandler(generator *schedule.Generator, logger zerolog.Logger) *TimeslotHandler {
	return &TimeslotHandler{
		generator: generator,
		now:       time.Now,
		logger:    logger.With().Str("handler", "timeslot").Logger(),
	}
}

// GetSlots handles GET /api/pickup-slots requests. The full grid for
// today is returned; slots inside the preparation buffer are marked
// unavailable rather than omitted, so clients can render them greyed out.
func (h *TimeslotHandler) GetSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, h.generator.Slots(h.now()))
}
