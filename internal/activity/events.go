package activity

import "time"

// Event describes one executed panel interaction.
type Event struct {
	ID         string    `json:"id"`
	Panel      string    `json:"panel"`
	Query      string    `json:"query"`
	Rows       int       `json:"rows"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	At         time.Time `json:"at"`
}
