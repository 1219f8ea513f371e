package models

import "time"

// PipelineStage is one step of a speaker's outreach workflow.
type PipelineStage string

const (
	StageNew         PipelineStage = "new"
	StageInterested  PipelineStage = "interested"
	StagePitched     PipelineStage = "pitched"
	StageNegotiating PipelineStage = "negotiating"
	StageAccepted    PipelineStage = "accepted"
	StageRejected    PipelineStage = "rejected"

	// Legacy stages. Still valid transition targets, but the default board
	// renders no column for them.
	StageResearching PipelineStage = "researching"
	StageCompleted   PipelineStage = "completed"
)

// BoardStages is the column order of the default board.
var BoardStages = []PipelineStage{
	StageNew, StageInterested, StagePitched, StageNegotiating, StageAccepted, StageRejected,
}

type stageMeta struct {
	Label      string
	Border     string
	Background string
}

var stageMetas = map[PipelineStage]stageMeta{
	StageNew:         {"New", "border-slate-400", "bg-slate-50"},
	StageInterested:  {"Interested", "border-sky-400", "bg-sky-50"},
	StagePitched:     {"Pitched", "border-violet-400", "bg-violet-50"},
	StageNegotiating: {"Negotiating", "border-amber-400", "bg-amber-50"},
	StageAccepted:    {"Accepted", "border-emerald-400", "bg-emerald-50"},
	StageRejected:    {"Rejected", "border-rose-400", "bg-rose-50"},
	StageResearching: {"Researching", "border-slate-400", "bg-slate-50"},
	StageCompleted:   {"Completed", "border-emerald-400", "bg-emerald-50"},
}

func (s PipelineStage) Valid() bool {
	_, ok := stageMetas[s]
	return ok
}

func (s PipelineStage) Label() string {
	if m, ok := stageMetas[s]; ok {
		return m.Label
	}
	return string(s)
}

func (s PipelineStage) BorderColor() string { return stageMetas[s].Border }
func (s PipelineStage) Background() string  { return stageMetas[s].Background }

// StampsTimestamp reports whether entering this stage records a
// stage-specific timestamp on the score record. Pitched deliberately does
// not stamp; it schedules follow-up reminders instead.
func (s PipelineStage) StampsTimestamp() bool {
	switch s {
	case StageInterested, StageAccepted, StageRejected, StageCompleted:
		return true
	}
	return false
}

// StageUpdate is the partial write applied to a score record during a stage
// transition. EnteredAt is set only for stages where StampsTimestamp is true.
type StageUpdate struct {
	Stage     PipelineStage
	EnteredAt *time.Time
}
