package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/nextmic/nextmic/internal/models"
)

type ListParams struct {
	Query        string
	Location     string
	Organizer    string
	MinFee       float64
	MaxFee       float64
	DeadlineDays int
	Limit        int
	Offset       int
	SortBy       string // "deadline", "event_date", "newest"
}

type ListResult struct {
	Opportunities []models.Opportunity `json:"opportunities"`
	Total         int                  `json:"total"`
	Limit         int                  `json:"limit"`
	Offset        int                  `json:"offset"`
}

const opportunityCols = `id, event_name, organizer_name, description, topics, deadline, event_date,
	location, fee_min, fee_max, currency, external_url, source_domain, created_at, updated_at`

func buildOpportunityWhere(params ListParams) (string, []interface{}) {
	where := "WHERE 1=1"
	var args []interface{}
	argIdx := 1

	if params.Query != "" {
		where += fmt.Sprintf(" AND (event_name ILIKE '%%' || $%d || '%%' OR description ILIKE '%%' || $%d || '%%')", argIdx, argIdx)
		args = append(args, params.Query)
		argIdx++
	}
	if params.Location != "" {
		where += fmt.Sprintf(" AND location ILIKE '%%' || $%d || '%%'", argIdx)
		args = append(args, params.Location)
		argIdx++
	}
	if params.Organizer != "" {
		where += fmt.Sprintf(" AND organizer_name ILIKE '%%' || $%d || '%%'", argIdx)
		args = append(args, params.Organizer)
		argIdx++
	}
	if params.MinFee > 0 {
		where += fmt.Sprintf(" AND fee_max >= $%d", argIdx)
		args = append(args, params.MinFee)
		argIdx++
	}
	if params.MaxFee > 0 {
		where += fmt.Sprintf(" AND fee_min <= $%d", argIdx)
		args = append(args, params.MaxFee)
		argIdx++
	}
	if params.DeadlineDays > 0 {
		where += fmt.Sprintf(" AND deadline IS NOT NULL AND deadline >= NOW() AND deadline <= NOW() + ($%d * INTERVAL '1 day')", argIdx)
		args = append(args, params.DeadlineDays)
		argIdx++
	}

	return where, args
}

func scanOpportunity(scan func(dest ...interface{}) error) (models.Opportunity, error) {
	var o models.Opportunity
	var organizer, description, location, currency, sourceDomain *string

	err := scan(
		&o.ID, &o.EventName, &organizer, &description, &o.Topics, &o.Deadline, &o.EventDate,
		&location, &o.FeeMin, &o.FeeMax, &currency, &o.ExternalURL, &sourceDomain,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return o, err
	}

	if organizer != nil {
		o.OrganizerName = *organizer
	}
	if description != nil {
		o.Description = *description
	}
	if location != nil {
		o.Location = *location
	}
	if currency != nil {
		o.Currency = *currency
	}
	if sourceDomain != nil {
		o.SourceDomain = *sourceDomain
	}
	return o, nil
}

func (s *Store) ListOpportunities(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 20
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	where, args := buildOpportunityWhere(params)

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM opportunities "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count failed: %w", err)
	}

	sql := fmt.Sprintf("SELECT %s FROM opportunities %s", opportunityCols, where)
	switch params.SortBy {
	case "deadline":
		sql += " ORDER BY deadline ASC NULLS LAST"
	case "event_date":
		sql += " ORDER BY event_date ASC NULLS LAST"
	default:
		sql += " ORDER BY created_at DESC"
	}
	sql += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var opps []models.Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		opps = append(opps, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	if opps == nil {
		opps = []models.Opportunity{}
	}

	return &ListResult{Opportunities: opps, Total: total, Limit: params.Limit, Offset: params.Offset}, nil
}

func (s *Store) GetOpportunity(ctx context.Context, id uuid.UUID) (*models.Opportunity, error) {
	sql := fmt.Sprintf("SELECT %s FROM opportunities WHERE id = $1", opportunityCols)
	o, err := scanOpportunity(s.pool.QueryRow(ctx, sql, id).Scan)
	if err != nil {
		return nil, fmt.Errorf("not found: %w", err)
	}
	return &o, nil
}

// UpsertOpportunity inserts or refreshes a discovered opportunity keyed on
// its external URL, and returns the record id.
func (s *Store) UpsertOpportunity(ctx context.Context, o models.Opportunity) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx, `
		INSERT INTO opportunities (
			event_name, organizer_name, description, topics, deadline, event_date,
			location, fee_min, fee_max, currency, external_url, source_domain
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (external_url) DO UPDATE SET
			event_name = EXCLUDED.event_name,
			organizer_name = EXCLUDED.organizer_name,
			description = EXCLUDED.description,
			topics = EXCLUDED.topics,
			deadline = EXCLUDED.deadline,
			event_date = EXCLUDED.event_date,
			location = EXCLUDED.location,
			fee_min = EXCLUDED.fee_min,
			fee_max = EXCLUDED.fee_max,
			updated_at = NOW()
		RETURNING id
	`, o.EventName, o.OrganizerName, o.Description, o.Topics, o.Deadline, o.EventDate,
		o.Location, o.FeeMin, o.FeeMax, o.Currency, o.ExternalURL, o.SourceDomain).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upsert failed: %w", err)
	}
	return id, nil
}

func (s *Store) SetOpportunityEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	_, err := s.pool.Exec(ctx,
		"UPDATE opportunities SET embedding = $2 WHERE id = $1",
		id, pgvector.NewVector(embedding))
	return err
}

// CandidateMatch pairs an opportunity with its cosine similarity to a
// speaker's topic embedding.
type CandidateMatch struct {
	Opportunity models.Opportunity
	Similarity  float64
}

// CandidateMatches returns embedded opportunities the user has no score for
// yet, nearest to the given topic embedding first.
func (s *Store) CandidateMatches(ctx context.Context, userID uuid.UUID, embedding []float32, limit int) ([]CandidateMatch, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	sql := fmt.Sprintf(`
		SELECT %s, 1 - (embedding <=> $2) AS similarity
		FROM opportunities
		WHERE embedding IS NOT NULL
		  AND id NOT IN (SELECT opportunity_id FROM opportunity_scores WHERE user_id = $1)
		ORDER BY embedding <=> $2
		LIMIT $3
	`, opportunityCols)

	rows, err := s.pool.Query(ctx, sql, userID, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("candidate query failed: %w", err)
	}
	defer rows.Close()

	var matches []CandidateMatch
	for rows.Next() {
		var m CandidateMatch
		var organizer, description, location, currency, sourceDomain *string
		err := rows.Scan(
			&m.Opportunity.ID, &m.Opportunity.EventName, &organizer, &description,
			&m.Opportunity.Topics, &m.Opportunity.Deadline, &m.Opportunity.EventDate,
			&location, &m.Opportunity.FeeMin, &m.Opportunity.FeeMax, &currency,
			&m.Opportunity.ExternalURL, &sourceDomain,
			&m.Opportunity.CreatedAt, &m.Opportunity.UpdatedAt, &m.Similarity,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		if organizer != nil {
			m.Opportunity.OrganizerName = *organizer
		}
		if description != nil {
			m.Opportunity.Description = *description
		}
		if location != nil {
			m.Opportunity.Location = *location
		}
		if currency != nil {
			m.Opportunity.Currency = *currency
		}
		if sourceDomain != nil {
			m.Opportunity.SourceDomain = *sourceDomain
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// ListMissingEmbeddings returns ids of opportunities the ranker has not
// embedded yet.
func (s *Store) ListMissingEmbeddings(ctx context.Context, limit int) ([]models.Opportunity, error) {
	if limit <= 0 {
		limit = 100
	}
	sql := fmt.Sprintf("SELECT %s FROM opportunities WHERE embedding IS NULL ORDER BY created_at LIMIT $1", opportunityCols)
	rows, err := s.pool.Query(ctx, sql, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var opps []models.Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows.Scan)
		if err != nil {
			return nil, err
		}
		opps = append(opps, o)
	}
	return opps, rows.Err()
}
