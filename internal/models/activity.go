package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityType classifies an activity log entry.
type ActivityType string

const (
	ActivityNote ActivityType = "note"
)

// ActivityLogEntry is one append-only record of outreach activity.
type ActivityLogEntry struct {
	ID        uuid.UUID    `json:"id"`
	ScoreID   uuid.UUID    `json:"score_id"`
	UserID    uuid.UUID    `json:"user_id"`
	Type      ActivityType `json:"type"`
	Notes     string       `json:"notes"`
	CreatedAt time.Time    `json:"created_at"`
}
