package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lingvoclub/placement-backend/internal/model"
)

// ResultRepository handles finalized result data access. Results are
// append-only: they are written once inside the finalize transaction
// (SessionRepository.FinalizeStep) and never updated.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Get retrieves a result by its public ID.
func (r *ResultRepository) Get(ctx context.Context, id uuid.UUID) (*model.Result, error) {
	res := &model.Result{}
	var detected int
	err := r.pool.QueryRow(ctx,
		`SELECT id, session_id, detected_level, created_at FROM results WHERE id = $1`, id,
	).Scan(&res.ID, &res.SessionID, &detected, &res.CreatedAt)
	if err != nil {
		return nil, err
	}
	res.DetectedLevel = model.LanguageLevel(detected)
	return res, nil
}

// FinishedResult pairs a result with the test-taker's contact data, as
// needed by the xlsx export.
type FinishedResult struct {
	ResultID      uuid.UUID
	FullName      string
	Email         string
	DetectedLevel model.LanguageLevel
	FinishedAt    time.Time
}

// ListFinished returns all finalized results joined with their sessions,
// oldest first.
func (r *ResultRepository) ListFinished(ctx context.Context) ([]FinishedResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT res.id, s.full_name, s.email, res.detected_level, res.created_at
		 FROM results res
		 JOIN sessions s ON s.id = res.session_id
		 ORDER BY res.created_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []FinishedResult
	for rows.Next() {
		var fr FinishedResult
		var detected int
		if err := rows.Scan(&fr.ResultID, &fr.FullName, &fr.Email, &detected, &fr.FinishedAt); err != nil {
			return nil, err
		}
		fr.DetectedLevel = model.LanguageLevel(detected)
		results = append(results, fr)
	}
	return results, rows.Err()
}
