package models

import (
	"time"

	"github.com/google/uuid"
)

// Opportunity is the immutable description of a speaking engagement: a
// conference, meetup, corporate event or podcast looking for speakers.
// Score records reference it; the pipeline never mutates it.
type Opportunity struct {
	ID            uuid.UUID  `json:"id"`
	EventName     string     `json:"event_name"`
	OrganizerName string     `json:"organizer_name"`
	Description   string     `json:"description"`
	Topics        []string   `json:"topics,omitempty"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	EventDate     *time.Time `json:"event_date,omitempty"`
	Location      string     `json:"location,omitempty"`
	FeeMin        float64    `json:"fee_min,omitempty"`
	FeeMax        float64    `json:"fee_max,omitempty"`
	Currency      string     `json:"currency,omitempty"`
	ExternalURL   string     `json:"external_url"`
	SourceDomain  string     `json:"source_domain"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
