package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lingvoclub/placement-backend/internal/model"
)

// SessionRepository handles placement session and progress step data access.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create inserts a new session together with its first batch of progress
// steps in one transaction.
func (r *SessionRepository) Create(ctx context.Context, s *model.Session, steps []model.ProgressStep) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO sessions (id, full_name, email, start_level, chose_dont_know, status, current_level, current_step, level_end_step)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at`,
		s.ID, s.FullName, s.Email, int(s.StartLevel), s.ChoseDontKnow, s.Status, int(s.CurrentLevel), s.CurrentStep, s.LevelEndStep,
	).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	if err := insertSteps(ctx, tx, steps); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Get retrieves a session by its ID.
func (r *SessionRepository) Get(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	s := &model.Session{}
	var startLevel, currentLevel int
	err := r.pool.QueryRow(ctx,
		`SELECT id, full_name, email, start_level, chose_dont_know, status, current_level, current_step, level_end_step, created_at, finished_at, result_id
		 FROM sessions WHERE id = $1`, id,
	).Scan(&s.ID, &s.FullName, &s.Email, &startLevel, &s.ChoseDontKnow, &s.Status,
		&currentLevel, &s.CurrentStep, &s.LevelEndStep, &s.CreatedAt, &s.FinishedAt, &s.ResultID)
	if err != nil {
		return nil, err
	}
	s.StartLevel = model.LanguageLevel(startLevel)
	s.CurrentLevel = model.LanguageLevel(currentLevel)
	return s, nil
}

// Step retrieves one progress step of a session.
func (r *SessionRepository) Step(ctx context.Context, sessionID uuid.UUID, stepNumber int) (*model.ProgressStep, error) {
	st := &model.ProgressStep{}
	var level int
	err := r.pool.QueryRow(ctx,
		`SELECT session_id, step_number, question_id, level, given_answer, is_correct, answered_at
		 FROM progress_steps WHERE session_id = $1 AND step_number = $2`,
		sessionID, stepNumber,
	).Scan(&st.SessionID, &st.StepNumber, &st.QuestionID, &level, &st.GivenAnswer, &st.IsCorrect, &st.AnsweredAt)
	if err != nil {
		return nil, err
	}
	st.Level = model.LanguageLevel(level)
	return st, nil
}

// AdvanceStep records an answer for the current step and moves the session
// to the next step of the same batch, atomically.
func (r *SessionRepository) AdvanceStep(ctx context.Context, sessionID uuid.UUID, stepNumber int, givenAnswer string, isCorrect bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := recordAnswer(ctx, tx, sessionID, stepNumber, givenAnswer, isCorrect); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE sessions SET current_step = current_step + 1 WHERE id = $1`, sessionID); err != nil {
		return fmt.Errorf("advance session: %w", err)
	}

	return tx.Commit(ctx)
}

// AdvanceAndAppend records an answer for the last step of a level batch and
// seeds the next level's batch in the same transaction.
func (r *SessionRepository) AdvanceAndAppend(ctx context.Context, sessionID uuid.UUID, stepNumber int, givenAnswer string, isCorrect bool, nextLevel model.LanguageLevel, steps []model.ProgressStep) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := recordAnswer(ctx, tx, sessionID, stepNumber, givenAnswer, isCorrect); err != nil {
		return err
	}
	if err := insertSteps(ctx, tx, steps); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE sessions
		 SET current_step = current_step + 1, current_level = $2, level_end_step = $3
		 WHERE id = $1`,
		sessionID, int(nextLevel), stepNumber+len(steps)); err != nil {
		return fmt.Errorf("advance session: %w", err)
	}

	return tx.Commit(ctx)
}

// FinalizeStep records the final answer, writes the result row and marks the
// session FINISHED — all in one transaction, so the result is durably
// visible before any client can observe the FINISHED status.
func (r *SessionRepository) FinalizeStep(ctx context.Context, sessionID uuid.UUID, stepNumber int, givenAnswer string, isCorrect bool, result *model.Result) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := recordAnswer(ctx, tx, sessionID, stepNumber, givenAnswer, isCorrect); err != nil {
		return err
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO results (id, session_id, detected_level) VALUES ($1, $2, $3)
		 RETURNING created_at`,
		result.ID, result.SessionID, int(result.DetectedLevel),
	).Scan(&result.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}

	now := time.Now()
	if _, err := tx.Exec(ctx,
		`UPDATE sessions
		 SET status = $2, current_step = current_step + 1, finished_at = $3, result_id = $4
		 WHERE id = $1`,
		sessionID, model.SessionStatusFinished, now, result.ID); err != nil {
		return fmt.Errorf("finish session: %w", err)
	}

	return tx.Commit(ctx)
}

// History returns the answered questions of a session in step order.
func (r *SessionRepository) History(ctx context.Context, sessionID uuid.UUID) ([]model.AnsweredQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT q.id, q.level, q.category, q.topic_title, q.question_title, q.filepath, q.answer_type, q.answer_options, q.correct_answer,
		        ps.step_number, ps.given_answer, ps.is_correct
		 FROM progress_steps ps
		 JOIN questions q ON q.id = ps.question_id
		 WHERE ps.session_id = $1 AND ps.given_answer IS NOT NULL
		 ORDER BY ps.step_number`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []model.AnsweredQuestion
	for rows.Next() {
		var aq model.AnsweredQuestion
		var level int
		if err := rows.Scan(
			&aq.Question.ID, &level, &aq.Question.Category, &aq.Question.TopicTitle,
			&aq.Question.QuestionTitle, &aq.Question.Filepath, &aq.Question.AnswerType,
			&aq.Question.AnswerOptions, &aq.Question.CorrectAnswer,
			&aq.StepNumber, &aq.GivenAnswer, &aq.IsCorrect,
		); err != nil {
			return nil, err
		}
		aq.Question.Level = model.LanguageLevel(level)
		history = append(history, aq)
	}
	return history, rows.Err()
}

func recordAnswer(ctx context.Context, tx pgx.Tx, sessionID uuid.UUID, stepNumber int, givenAnswer string, isCorrect bool) error {
	tag, err := tx.Exec(ctx,
		`UPDATE progress_steps
		 SET given_answer = $3, is_correct = $4, answered_at = NOW()
		 WHERE session_id = $1 AND step_number = $2 AND given_answer IS NULL`,
		sessionID, stepNumber, givenAnswer, isCorrect)
	if err != nil {
		return fmt.Errorf("record answer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("step %d already answered or missing: %w", stepNumber, pgx.ErrNoRows)
	}
	return nil
}

func insertSteps(ctx context.Context, tx pgx.Tx, steps []model.ProgressStep) error {
	for _, st := range steps {
		if _, err := tx.Exec(ctx,
			`INSERT INTO progress_steps (session_id, step_number, question_id, level)
			 VALUES ($1, $2, $3, $4)`,
			st.SessionID, st.StepNumber, st.QuestionID, int(st.Level)); err != nil {
			return fmt.Errorf("insert step %d: %w", st.StepNumber, err)
		}
	}
	return nil
}
