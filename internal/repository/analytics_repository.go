package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lingvoclub/placement-backend/internal/model"
)

// AnalyticsRepository aggregates funnel and success metrics across all
// sessions for the admin view.
type AnalyticsRepository struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository creates a new AnalyticsRepository.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

// CountSessions returns the number of started and finished sessions.
func (r *AnalyticsRepository) CountSessions(ctx context.Context) (started, finished int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status = $1)
		 FROM sessions`, model.SessionStatusFinished,
	).Scan(&started, &finished)
	return
}

// StartLevelDistribution counts sessions per selected start level. Sessions
// where the taker chose "I don't know" are bucketed under A0 regardless of
// the effective ladder start.
func (r *AnalyticsRepository) StartLevelDistribution(ctx context.Context) (map[model.LanguageLevel]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT CASE WHEN chose_dont_know THEN $1 ELSE start_level END AS level, COUNT(id)
		 FROM sessions
		 GROUP BY 1
		 ORDER BY 1`, int(model.LevelA0),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.LanguageLevel]int)
	for rows.Next() {
		var level, count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, err
		}
		counts[model.LanguageLevel(level)] += count
	}
	return counts, rows.Err()
}

// TopicsSuccess tallies correct/total per (category, topic) over every
// answered step of every session.
func (r *AnalyticsRepository) TopicsSuccess(ctx context.Context) ([]model.TopicSuccess, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT q.category, q.topic_title, COUNT(ps.question_id),
		        COALESCE(SUM(ps.is_correct::int), 0)
		 FROM progress_steps ps
		 JOIN questions q ON q.id = ps.question_id
		 WHERE ps.given_answer IS NOT NULL
		 GROUP BY q.category, q.topic_title
		 ORDER BY q.category, q.topic_title`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []model.TopicSuccess
	for rows.Next() {
		var ts model.TopicSuccess
		if err := rows.Scan(&ts.Category, &ts.TopicTitle, &ts.QuestionsCount, &ts.CorrectAnswersCount); err != nil {
			return nil, err
		}
		topics = append(topics, ts)
	}
	return topics, rows.Err()
}
