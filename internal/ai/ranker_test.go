package ai

import (
	"strings"
	"testing"

	"github.com/nextmic/nextmic/internal/models"
)

func TestSimilarityToScore_Clamps(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-0.3, 0},
		{0, 0},
		{0.5, 50},
		{0.874, 87},
		{1, 100},
		{1.2, 100},
	}
	for _, tt := range tests {
		if got := similarityToScore(tt.in); got != tt.want {
			t.Errorf("similarityToScore(%v) = %v, expected %v", tt.in, got, tt.want)
		}
	}
}

func TestBuildReason_NamesOverlappingTopics(t *testing.T) {
	opp := models.Opportunity{Topics: []string{"Kubernetes", "observability", "security"}}
	reason := buildReason([]string{"kubernetes", "Observability"}, opp, 0.82)

	for _, want := range []string{"Kubernetes", "Observability", "82%"} {
		if !contains(reason, want) {
			t.Fatalf("reason %q missing %q", reason, want)
		}
	}
}

func TestBuildReason_FallsBackToSimilarityOnly(t *testing.T) {
	opp := models.Opportunity{Topics: []string{"fintech"}}
	reason := buildReason([]string{"kubernetes"}, opp, 0.4)

	if !contains(reason, "40%") {
		t.Fatalf("reason %q missing similarity", reason)
	}
	if contains(reason, "fintech") {
		t.Fatalf("reason %q should not claim a topic match", reason)
	}
}

func TestTopicOverlap_CaseInsensitiveAndDeduplicated(t *testing.T) {
	got := topicOverlap(
		[]string{"Go", "go", " DevOps ", "AI"},
		[]string{"GO", "devops", "rust"},
	)
	if len(got) != 2 {
		t.Fatalf("expected 2 overlapping topics, got %v", got)
	}
}

func TestProfileText_JoinsTopicsAndBio(t *testing.T) {
	p := models.SpeakerProfile{Topics: []string{"Go", "distributed systems"}, Bio: "I talk about infra."}
	text := profileText(p)
	if !contains(text, "Go, distributed systems") || !contains(text, "I talk about infra.") {
		t.Fatalf("unexpected profile text: %q", text)
	}
}

func contains(s, sub string) bool {
	return strings.Contains(s, sub)
}
