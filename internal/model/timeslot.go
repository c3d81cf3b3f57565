package model

import "time"

// TimeSlot is one fixed-width pickup window. Slots are generated fresh
// per request and never persisted.
type TimeSlot struct {
	Start     time.Time `json:"start"`
	Label     string    `json:"label"`
	Available bool      `json:"available"`
}
