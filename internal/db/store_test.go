package db

import (
	"strings"
	"testing"
	"time"

	"github.com/nextmic/nextmic/internal/models"
)

func TestStageTimestampColumns_MatchStageContract(t *testing.T) {
	stamping := []models.PipelineStage{
		models.StageInterested, models.StageAccepted, models.StageRejected, models.StageCompleted,
	}
	for _, stage := range stamping {
		if _, ok := stageTimestampColumns[stage]; !ok {
			t.Fatalf("stage %s stamps a timestamp but has no column mapping", stage)
		}
		if !stage.StampsTimestamp() {
			t.Fatalf("stage %s has a column mapping but StampsTimestamp is false", stage)
		}
	}

	for _, stage := range []models.PipelineStage{
		models.StageNew, models.StagePitched, models.StageNegotiating, models.StageResearching,
	} {
		if _, ok := stageTimestampColumns[stage]; ok {
			t.Fatalf("stage %s must not stamp a timestamp column", stage)
		}
	}
}

func TestBuildStageUpdateSet_StampedStage(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	set, args := buildStageUpdateSet(models.StageUpdate{Stage: models.StageAccepted, EnteredAt: &at})

	if !strings.Contains(set, "pipeline_stage = $2") {
		t.Fatalf("set clause missing stage assignment: %s", set)
	}
	if !strings.Contains(set, "accepted_at = $3") {
		t.Fatalf("set clause missing accepted_at stamp: %s", set)
	}
	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(args))
	}
	if args[0] != "accepted" {
		t.Fatalf("expected stage arg %q, got %v", "accepted", args[0])
	}
	if args[1] != at {
		t.Fatalf("expected timestamp arg %v, got %v", at, args[1])
	}
}

func TestBuildStageUpdateSet_UnstampedStage(t *testing.T) {
	set, args := buildStageUpdateSet(models.StageUpdate{Stage: models.StagePitched})

	if strings.Contains(set, "_at = $3") {
		t.Fatalf("pitched must not stamp a stage timestamp: %s", set)
	}
	if len(args) != 1 {
		t.Fatalf("expected 1 arg, got %d", len(args))
	}
}

func TestBuildOpportunityWhere_Filters(t *testing.T) {
	where, args := buildOpportunityWhere(ListParams{
		Query:        "kubernetes",
		Location:     "Berlin",
		MinFee:       1000,
		DeadlineDays: 30,
	})

	mustContain := []string{
		"event_name ILIKE",
		"location ILIKE",
		"fee_max >=",
		"deadline <= NOW() + ($4 * INTERVAL '1 day')",
	}
	for _, token := range mustContain {
		if !strings.Contains(where, token) {
			t.Fatalf("where clause missing token %q: %s", token, where)
		}
	}
	if len(args) != 4 {
		t.Fatalf("expected 4 args, got %d", len(args))
	}
}

func TestBuildOpportunityWhere_EmptyParams(t *testing.T) {
	where, args := buildOpportunityWhere(ListParams{})
	if where != "WHERE 1=1" {
		t.Fatalf("expected bare where clause, got %s", where)
	}
	if len(args) != 0 {
		t.Fatalf("expected no args, got %d", len(args))
	}
}
