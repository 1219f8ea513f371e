package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// DefaultFollowUpIntervals is used when a speaker has not configured their
// own follow-up cadence (days after the pitch date).
var DefaultFollowUpIntervals = []int{7, 14, 21}

// SpeakerProfile holds per-user configuration for the pipeline and the
// ranking process.
type SpeakerProfile struct {
	UserID            uuid.UUID `json:"user_id"`
	Bio               string    `json:"bio,omitempty"`
	Topics            []string  `json:"topics,omitempty"`
	FeeMin            float64   `json:"fee_min,omitempty"`
	FeeMax            float64   `json:"fee_max,omitempty"`
	FollowUpIntervals []int     `json:"follow_up_intervals,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Intervals returns the configured follow-up intervals, falling back to the
// default 7/14/21 cadence when unset.
func (p SpeakerProfile) Intervals() []int {
	if len(p.FollowUpIntervals) == 0 {
		return DefaultFollowUpIntervals
	}
	return p.FollowUpIntervals
}
