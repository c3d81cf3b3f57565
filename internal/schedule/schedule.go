package schedule

import (
	"time"

	"bakehouse/internal/model"

	"github.com/rs/zerolog"
)

// Config holds the store's pickup scheduling parameters.
type Config struct {
	OpeningHour  int
	ClosingHour  int
	SlotInterval time.Duration
	PrepBuffer   time.Duration
}

// DefaultConfig returns the store's standard hours: 10:00–18:00,
// 15-minute slots, 30-minute preparation buffer.
func DefaultConfig() Config {
	return Config{
		OpeningHour:  10,
		ClosingHour:  18,
		SlotInterval: 15 * time.Minute,
		PrepBuffer:   30 * time.Minute,
	}
}

// Generator produces pickup slots for the current calendar day.
type Generator struct {
	cfg    Config
	logger zerolog.Logger
}

// NewGenerator creates a pickup slot generator.
func NewGenerator(cfg Config, logger zerolog.Logger) *Generator {
	return &Generator{
		cfg:    cfg,
		logger: logger.With().Str("component", "pickup-scheduler").Logger(),
	}
}

// Slots generates every slot between opening and closing on now's
// calendar day, one per interval, closing time excluded. The full day is
// always returned for display; a slot is available only when it starts
// strictly after now plus the preparation buffer. A slot exactly at the
// buffer boundary is deliberately unavailable.
//
// Slots are only generated for now's calendar day; the caller re-invokes
// on day rollover.
func (g *Generator) Slots(now time.Time) []model.TimeSlot {
	year, month, day := now.Date()
	start := time.Date(year, month, day, g.cfg.OpeningHour, 0, 0, 0, now.Location())
	closing := time.Date(year, month, day, g.cfg.ClosingHour, 0, 0, 0, now.Location())
	earliest := now.Add(g.cfg.PrepBuffer)

	var slots []model.TimeSlot
	for cursor := start; cursor.Before(closing); cursor = cursor.Add(g.cfg.SlotInterval) {
		slots = append(slots, model.TimeSlot{
			Start:     cursor,
			Label:     cursor.Format("15:04"),
			Available: cursor.After(earliest),
		})
	}

	return slots
}

// Validate reports whether instant matches an available slot in the
// given slot set. Stale selections are caught here, at the point of
// advancing checkout, not retroactively.
func Validate(slots []model.TimeSlot, instant time.Time) bool {
	for _, slot := range slots {
		if slot.Available && slot.Start.Equal(instant) {
			return true
		}
	}
	return false
}
