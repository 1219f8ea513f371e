// Package ai scores speaking opportunities against a speaker's profile.
// Embeddings come from an external function; similarity search runs in
// Postgres via pgvector. The resulting score records are what the pipeline
// board renders as cards in the "new" column.
package ai

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/nextmic/nextmic/internal/db"
	"github.com/nextmic/nextmic/internal/models"
)

// Embedder is the externally hosted embedding function.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type Ranker struct {
	store    *db.Store
	embedder Embedder
}

func NewRanker(store *db.Store, embedder Embedder) *Ranker {
	return &Ranker{store: store, embedder: embedder}
}

type RankStats struct {
	Embedded int `json:"embedded"`
	Scored   int `json:"scored"`
	Errors   int `json:"errors"`
}

// EmbedMissing generates embeddings for opportunities that have none yet.
func (r *Ranker) EmbedMissing(ctx context.Context, batchSize int) (int, error) {
	opps, err := r.store.ListMissingEmbeddings(ctx, batchSize)
	if err != nil {
		return 0, fmt.Errorf("list missing embeddings: %w", err)
	}

	embedded := 0
	for _, opp := range opps {
		text := opp.EventName + "\n" + opp.Description
		vec, err := r.embedder.GenerateEmbedding(ctx, text)
		if err != nil {
			log.Printf("[ranker] embedding failed for %s: %v", opp.ID, err)
			continue
		}
		if err := r.store.SetOpportunityEmbedding(ctx, opp.ID, vec); err != nil {
			log.Printf("[ranker] embedding write failed for %s: %v", opp.ID, err)
			continue
		}
		embedded++
	}
	return embedded, nil
}

// RankForUser scores unscored opportunities for one speaker and creates the
// corresponding score records with the initial "new" stage.
func (r *Ranker) RankForUser(ctx context.Context, userID uuid.UUID, limit int) (*RankStats, error) {
	profile, err := r.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if len(profile.Topics) == 0 && profile.Bio == "" {
		return &RankStats{}, nil
	}

	vec, err := r.embedder.GenerateEmbedding(ctx, profileText(*profile))
	if err != nil {
		return nil, fmt.Errorf("embed profile: %w", err)
	}

	matches, err := r.store.CandidateMatches(ctx, userID, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("candidate search: %w", err)
	}

	stats := &RankStats{}
	for _, m := range matches {
		score := similarityToScore(m.Similarity)
		reason := buildReason(profile.Topics, m.Opportunity, m.Similarity)
		if err := r.store.CreateScore(ctx, userID, m.Opportunity.ID, score, reason); err != nil {
			log.Printf("[ranker] score write failed for %s/%s: %v", userID, m.Opportunity.ID, err)
			stats.Errors++
			continue
		}
		stats.Scored++
	}
	return stats, nil
}

func profileText(p models.SpeakerProfile) string {
	parts := make([]string, 0, 2)
	if len(p.Topics) > 0 {
		parts = append(parts, strings.Join(p.Topics, ", "))
	}
	if p.Bio != "" {
		parts = append(parts, p.Bio)
	}
	return strings.Join(parts, "\n")
}

// similarityToScore maps cosine similarity onto the 0-100 card score.
func similarityToScore(similarity float64) float64 {
	if similarity < 0 {
		similarity = 0
	}
	if similarity > 1 {
		similarity = 1
	}
	return math.Round(similarity * 100)
}

// buildReason produces the short human-readable rationale shown on a card.
func buildReason(speakerTopics []string, opp models.Opportunity, similarity float64) string {
	overlap := topicOverlap(speakerTopics, opp.Topics)
	if len(overlap) > 0 {
		return fmt.Sprintf("Strong match on %s (%.0f%% topical similarity)",
			strings.Join(overlap, ", "), similarityToScore(similarity))
	}
	return fmt.Sprintf("%.0f%% topical similarity with your speaking profile", similarityToScore(similarity))
}

func topicOverlap(a, b []string) []string {
	seen := make(map[string]string, len(a))
	for _, t := range a {
		k := strings.ToLower(strings.TrimSpace(t))
		if k != "" {
			seen[k] = strings.TrimSpace(t)
		}
	}

	var overlap []string
	for _, t := range b {
		k := strings.ToLower(strings.TrimSpace(t))
		if orig, ok := seen[k]; ok {
			overlap = append(overlap, orig)
			delete(seen, k)
		}
	}
	sort.Strings(overlap)
	return overlap
}
