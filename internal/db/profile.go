package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nextmic/nextmic/internal/models"
)

// GetProfile returns the speaker's profile, or an empty one (with default
// follow-up intervals resolvable via Intervals()) if none was saved yet.
func (s *Store) GetProfile(ctx context.Context, userID uuid.UUID) (*models.SpeakerProfile, error) {
	var p models.SpeakerProfile
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, bio, topics, fee_min, fee_max, follow_up_intervals, updated_at
		FROM speaker_profiles
		WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.Bio, &p.Topics, &p.FeeMin, &p.FeeMax, &p.FollowUpIntervals, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return &models.SpeakerProfile{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("profile query failed: %w", err)
	}
	return &p, nil
}

func (s *Store) UpdateProfile(ctx context.Context, p models.SpeakerProfile) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO speaker_profiles (user_id, bio, topics, fee_min, fee_max, follow_up_intervals, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			bio = EXCLUDED.bio,
			topics = EXCLUDED.topics,
			fee_min = EXCLUDED.fee_min,
			fee_max = EXCLUDED.fee_max,
			follow_up_intervals = EXCLUDED.follow_up_intervals,
			updated_at = NOW()
	`, p.UserID, p.Bio, p.Topics, p.FeeMin, p.FeeMax, p.FollowUpIntervals)
	return err
}
