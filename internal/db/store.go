package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nextmic/nextmic/internal/models"
)

var ErrScoreNotFound = errors.New("score record not found")

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// stageTimestampColumns maps the stages that stamp a timestamp on entry to
// their score-record column.
var stageTimestampColumns = map[models.PipelineStage]string{
	models.StageInterested: "interested_at",
	models.StageAccepted:   "accepted_at",
	models.StageRejected:   "rejected_at",
	models.StageCompleted:  "completed_at",
}

const scoreCols = `s.id, s.opportunity_id, o.event_name, o.organizer_name, o.description,
	o.deadline, o.event_date, o.location, o.fee_min, o.fee_max, o.external_url,
	s.ai_score, s.ai_reason, s.pipeline_stage, s.calculated_at, s.viewed_at`

// ListScoresForUser returns the user's scored opportunities joined to their
// event descriptions, highest AI score first. A missing pipeline stage is
// defaulted to "new" here, at ingestion, and nowhere else.
func (s *Store) ListScoresForUser(ctx context.Context, userID uuid.UUID) ([]models.OpportunityCard, error) {
	sql := fmt.Sprintf(`
		SELECT %s
		FROM opportunity_scores s
		JOIN opportunities o ON o.id = s.opportunity_id
		WHERE s.user_id = $1
		ORDER BY s.ai_score DESC
	`, scoreCols)

	rows, err := s.pool.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var cards []models.OpportunityCard
	for rows.Next() {
		var c models.OpportunityCard
		var organizer, description, location, aiReason, stage *string
		err := rows.Scan(
			&c.ScoreID, &c.OpportunityID, &c.EventName, &organizer, &description,
			&c.Deadline, &c.EventDate, &location, &c.FeeMin, &c.FeeMax, &c.ExternalURL,
			&c.AIScore, &aiReason, &stage, &c.CalculatedAt, &c.ViewedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		if organizer != nil {
			c.OrganizerName = *organizer
		}
		if description != nil {
			c.Description = *description
		}
		if location != nil {
			c.Location = *location
		}
		if aiReason != nil {
			c.AIReason = *aiReason
		}
		c.PipelineStage = models.StageNew
		if stage != nil && *stage != "" {
			c.PipelineStage = models.PipelineStage(*stage)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	if cards == nil {
		cards = []models.OpportunityCard{}
	}
	return cards, nil
}

// buildStageUpdateSet constructs the SET clause for a stage transition. The
// write is partial: only the stage, the optional stage timestamp column and
// updated_at are touched.
func buildStageUpdateSet(update models.StageUpdate) (string, []interface{}) {
	set := "pipeline_stage = $2, updated_at = NOW()"
	args := []interface{}{string(update.Stage)}

	if update.EnteredAt != nil {
		if col, ok := stageTimestampColumns[update.Stage]; ok {
			set += fmt.Sprintf(", %s = $3", col)
			args = append(args, *update.EnteredAt)
		}
	}
	return set, args
}

func (s *Store) UpdateScoreStage(ctx context.Context, scoreID uuid.UUID, update models.StageUpdate) error {
	set, args := buildStageUpdateSet(update)
	args = append([]interface{}{scoreID}, args...)

	tag, err := s.pool.Exec(ctx, "UPDATE opportunity_scores SET "+set+" WHERE id = $1", args...)
	if err != nil {
		return fmt.Errorf("stage update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrScoreNotFound
	}
	return nil
}

func (s *Store) MarkScoreViewed(ctx context.Context, scoreID uuid.UUID, viewedAt time.Time) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE opportunity_scores SET viewed_at = $2 WHERE id = $1", scoreID, viewedAt)
	if err != nil {
		return fmt.Errorf("viewed-at update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrScoreNotFound
	}
	return nil
}

func (s *Store) AppendActivity(ctx context.Context, entry models.ActivityLogEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO activity_log (score_id, user_id, activity_type, notes)
		VALUES ($1, $2, $3, $4)
	`, entry.ScoreID, entry.UserID, string(entry.Type), entry.Notes)
	return err
}

func (s *Store) ListActivityForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.ActivityLogEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, score_id, user_id, activity_type, notes, created_at
		FROM activity_log
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.ActivityLogEntry
	for rows.Next() {
		var e models.ActivityLogEntry
		var typ string
		if err := rows.Scan(&e.ID, &e.ScoreID, &e.UserID, &typ, &e.Notes, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Type = models.ActivityType(typ)
		entries = append(entries, e)
	}
	if entries == nil {
		entries = []models.ActivityLogEntry{}
	}
	return entries, rows.Err()
}

// CreateScore inserts a freshly ranked score record with the initial "new"
// stage. Re-ranking an already scored opportunity refreshes the score but
// leaves the user's stage alone.
func (s *Store) CreateScore(ctx context.Context, userID, opportunityID uuid.UUID, aiScore float64, aiReason string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO opportunity_scores (user_id, opportunity_id, ai_score, ai_reason, pipeline_stage, calculated_at)
		VALUES ($1, $2, $3, $4, 'new', NOW())
		ON CONFLICT (user_id, opportunity_id) DO UPDATE SET
			ai_score = EXCLUDED.ai_score,
			ai_reason = EXCLUDED.ai_reason,
			calculated_at = NOW()
	`, userID, opportunityID, aiScore, aiReason)
	return err
}

// StageCounts aggregates cards per stage for one user, for reporting.
func (s *Store) StageCounts(ctx context.Context, userID uuid.UUID) (models.StageStats, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT COALESCE(NULLIF(pipeline_stage, ''), 'new'), COUNT(*)
		FROM opportunity_scores
		WHERE user_id = $1
		GROUP BY 1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := models.StageStats{}
	for rows.Next() {
		var stage string
		var count int
		if err := rows.Scan(&stage, &count); err != nil {
			return nil, err
		}
		stats[models.PipelineStage(stage)] = count
	}
	return stats, rows.Err()
}
