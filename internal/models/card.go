package models

import (
	"time"

	"github.com/google/uuid"
)

// OpportunityCard is one speaking opportunity as tracked in a user's
// pipeline. ScoreID identifies the score record (the unit of mutation);
// OpportunityID points at the immutable event description.
type OpportunityCard struct {
	ScoreID       uuid.UUID     `json:"score_id"`
	OpportunityID uuid.UUID     `json:"opportunity_id"`
	EventName     string        `json:"event_name"`
	OrganizerName string        `json:"organizer_name"`
	Description   string        `json:"description"`
	Deadline      *time.Time    `json:"deadline,omitempty"`
	EventDate     *time.Time    `json:"event_date,omitempty"`
	Location      string        `json:"location,omitempty"`
	FeeMin        float64       `json:"fee_min,omitempty"`
	FeeMax        float64       `json:"fee_max,omitempty"`
	ExternalURL   string        `json:"external_url,omitempty"`
	AIScore       float64       `json:"ai_score"`
	AIReason      string        `json:"ai_reason,omitempty"`
	PipelineStage PipelineStage `json:"pipeline_stage"`
	CalculatedAt  time.Time     `json:"calculated_at"`
	ViewedAt      *time.Time    `json:"viewed_at,omitempty"`
}

// StageColumn is a rendering grouping: one board column and the cards
// currently in it. Not persisted; recomputed from the in-memory card list.
type StageColumn struct {
	Stage       PipelineStage     `json:"stage"`
	Label       string            `json:"label"`
	BorderColor string            `json:"border_color"`
	Background  string            `json:"background"`
	Cards       []OpportunityCard `json:"cards"`
}

// StageStats counts cards per stage.
type StageStats map[PipelineStage]int
