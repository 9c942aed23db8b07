package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lingvoclub/placement-backend/internal/model"
)

// QuestionRepository handles question bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListGroups enumerates the (category, answer type, topic) buckets at a
// level with their question counts. An empty slice means the bank has no
// material for the level.
func (r *QuestionRepository) ListGroups(ctx context.Context, level model.LanguageLevel) ([]model.QuestionGroup, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT category, answer_type, topic_title, COUNT(id)
		 FROM questions
		 WHERE level = $1
		 GROUP BY category, answer_type, topic_title
		 ORDER BY category, answer_type, topic_title`, int(level),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []model.QuestionGroup
	for rows.Next() {
		var g model.QuestionGroup
		if err := rows.Scan(&g.Category, &g.AnswerType, &g.TopicTitle, &g.QuestionsCount); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// PickFromGroup returns the question at the given offset within a group,
// in stable id order. The caller randomizes the offset.
func (r *QuestionRepository) PickFromGroup(ctx context.Context, level model.LanguageLevel, group model.QuestionGroup, offset int) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, level, category, topic_title, question_title, filepath, answer_type, answer_options, correct_answer
		 FROM questions
		 WHERE level = $1 AND category = $2 AND answer_type = $3 AND topic_title = $4
		 ORDER BY id
		 OFFSET $5 LIMIT 1`,
		int(level), group.Category, group.AnswerType, group.TopicTitle, offset,
	).Scan(&q.ID, &q.Level, &q.Category, &q.TopicTitle, &q.QuestionTitle, &q.Filepath, &q.AnswerType, &q.AnswerOptions, &q.CorrectAnswer)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// GetByID retrieves a single question.
func (r *QuestionRepository) GetByID(ctx context.Context, id int) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, level, category, topic_title, question_title, filepath, answer_type, answer_options, correct_answer
		 FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.Level, &q.Category, &q.TopicTitle, &q.QuestionTitle, &q.Filepath, &q.AnswerType, &q.AnswerOptions, &q.CorrectAnswer)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Create inserts a new question. Used by the seeding CLI.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (level, category, topic_title, question_title, filepath, answer_type, answer_options, correct_answer)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		int(q.Level), q.Category, q.TopicTitle, q.QuestionTitle, q.Filepath, q.AnswerType, q.AnswerOptions, q.CorrectAnswer,
	).Scan(&q.ID)
}
