package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/lingvoclub/placement-backend/internal/model"
	"github.com/lingvoclub/placement-backend/internal/scoring"
)

// QuestionBank serves questions grouped by level, category, answer type and
// topic. Implemented by repository.QuestionRepository.
type QuestionBank interface {
	ListGroups(ctx context.Context, level model.LanguageLevel) ([]model.QuestionGroup, error)
	PickFromGroup(ctx context.Context, level model.LanguageLevel, group model.QuestionGroup, offset int) (*model.Question, error)
	GetByID(ctx context.Context, id int) (*model.Question, error)
}

// SessionStore persists sessions and their progress steps. Implemented by
// repository.SessionRepository. The three mutation methods each apply one
// atomic transition.
type SessionStore interface {
	Create(ctx context.Context, s *model.Session, steps []model.ProgressStep) error
	Get(ctx context.Context, id uuid.UUID) (*model.Session, error)
	Step(ctx context.Context, sessionID uuid.UUID, stepNumber int) (*model.ProgressStep, error)
	AdvanceStep(ctx context.Context, sessionID uuid.UUID, stepNumber int, givenAnswer string, isCorrect bool) error
	AdvanceAndAppend(ctx context.Context, sessionID uuid.UUID, stepNumber int, givenAnswer string, isCorrect bool, nextLevel model.LanguageLevel, steps []model.ProgressStep) error
	FinalizeStep(ctx context.Context, sessionID uuid.UUID, stepNumber int, givenAnswer string, isCorrect bool, result *model.Result) error
	History(ctx context.Context, sessionID uuid.UUID) ([]model.AnsweredQuestion, error)
}

// SessionLocker serializes submits per session. Implemented by
// repository.SessionLock.
type SessionLocker interface {
	Acquire(ctx context.Context, sessionID uuid.UUID) (release func(), ok bool, err error)
}

// PlacementService is the adaptive session state machine: it starts
// sessions, walks the difficulty ladder one level batch at a time and
// finalizes results.
type PlacementService struct {
	bank  QuestionBank
	store SessionStore
	lock  SessionLocker
	log   zerolog.Logger
}

// NewPlacementService creates a new PlacementService.
func NewPlacementService(bank QuestionBank, store SessionStore, lock SessionLocker, log zerolog.Logger) *PlacementService {
	return &PlacementService{
		bank:  bank,
		store: store,
		lock:  lock,
		log:   log.With().Str("component", "placement_service").Logger(),
	}
}

// StatusView is the idempotent snapshot of a session returned by Status.
type StatusView struct {
	Status   model.SessionStatus
	Question *model.QuestionPayload // set when IN_PROGRESS
	ResultID *uuid.UUID             // set when FINISHED
}

// StepOutcome is what a successful SubmitAnswer yields: either the next
// question or the public result identifier of the finished test.
type StepOutcome struct {
	Finished bool
	ResultID uuid.UUID
	Question *model.QuestionPayload
}

// Start creates an IN_PROGRESS session for the test-taker and returns it
// together with the first question. A requested level of A0 ("I don't know
// the language") starts the ladder at the lowest real level.
func (s *PlacementService) Start(ctx context.Context, fullName, email string, requestedLevel model.LanguageLevel) (*model.Session, *model.QuestionPayload, error) {
	effective := model.EffectiveStartLevel(requestedLevel)

	session := &model.Session{
		ID:            uuid.New(),
		FullName:      fullName,
		Email:         email,
		StartLevel:    effective,
		ChoseDontKnow: requestedLevel == model.LevelA0,
		Status:        model.SessionStatusInProgress,
		CurrentLevel:  effective,
		CurrentStep:   1,
	}

	batch, questions, err := s.buildBatch(ctx, session.ID, effective, 0)
	if err != nil {
		return nil, nil, err
	}
	session.LevelEndStep = len(batch)

	if err := s.store.Create(ctx, session, batch); err != nil {
		return nil, nil, fmt.Errorf("create session: %w", err)
	}

	s.log.Info().
		Str("session_id", session.ID.String()).
		Str("start_level", effective.String()).
		Int("batch_size", len(batch)).
		Msg("Placement test started")

	return session, questions[0].Payload(), nil
}

// Status reports the session's current state without side effects. An
// unknown session ID reads as NOT_STARTED, matching a visitor who has not
// begun (or whose token points at nothing).
func (s *PlacementService) Status(ctx context.Context, sessionID uuid.UUID) (*StatusView, error) {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if isNotFound(err) {
			return &StatusView{Status: model.SessionStatusNotStarted}, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.Status == model.SessionStatusFinished {
		return &StatusView{Status: model.SessionStatusFinished, ResultID: session.ResultID}, nil
	}

	question, err := s.questionAt(ctx, sessionID, session.CurrentStep)
	if err != nil {
		return nil, err
	}
	return &StatusView{Status: model.SessionStatusInProgress, Question: question.Payload()}, nil
}

// SubmitAnswer grades the currently presented question, records the step
// and either serves the next question or finalizes the test. Concurrent
// duplicate submissions are serialized per session; the loser fails with
// ErrConcurrentModification and no second transition is applied.
func (s *PlacementService) SubmitAnswer(ctx context.Context, sessionID uuid.UUID, rawAnswer string) (*StepOutcome, error) {
	release, ok, err := s.lock.Acquire(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("acquire session lock: %w", err)
	}
	if !ok {
		return nil, ErrConcurrentModification
	}
	defer release()

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.Status != model.SessionStatusInProgress {
		return nil, ErrInvalidState
	}

	step, err := s.store.Step(ctx, sessionID, session.CurrentStep)
	if err != nil {
		return nil, fmt.Errorf("get current step: %w", err)
	}
	question, err := s.bank.GetByID(ctx, step.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("get current question: %w", err)
	}

	// Validate before any mutation: a malformed answer must leave the
	// session exactly as it was.
	given, err := model.ParseGivenAnswer(question.AnswerType, rawAnswer, question.OptionCount())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAnswer, err)
	}
	wireAnswer := given.Wire()
	correct := scoring.Score(question, wireAnswer)

	if session.CurrentStep < session.LevelEndStep {
		// Mid-batch: record and serve the next question of the same level.
		if err := s.store.AdvanceStep(ctx, sessionID, session.CurrentStep, wireAnswer, correct); err != nil {
			return nil, fmt.Errorf("advance step: %w", err)
		}
		next, err := s.questionAt(ctx, sessionID, session.CurrentStep+1)
		if err != nil {
			return nil, err
		}
		return &StepOutcome{Question: next.Payload()}, nil
	}

	// Level batch complete: fold the just-graded answer into the history
	// and let the estimator decide where the ladder goes.
	history, err := s.store.History(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	history = append(history, model.AnsweredQuestion{
		Question:    *question,
		StepNumber:  session.CurrentStep,
		GivenAnswer: wireAnswer,
		IsCorrect:   correct,
	})

	outcome := scoring.Resolve(scoring.ComputeLevelStats(history))
	if outcome.Finished {
		return s.finalize(ctx, session, wireAnswer, correct, outcome.DetectedLevel)
	}

	batch, questions, err := s.buildBatch(ctx, sessionID, outcome.NextLevel, session.CurrentStep)
	if err != nil {
		if errors.Is(err, ErrExhaustedBank) {
			// The bank has nothing at the next level: end the test early on
			// the evidence collected so far.
			detected, _ := scoring.Estimate(history)
			s.log.Warn().
				Str("session_id", sessionID.String()).
				Str("level", outcome.NextLevel.String()).
				Msg("Question bank exhausted, finalizing early")
			return s.finalize(ctx, session, wireAnswer, correct, detected)
		}
		return nil, err
	}

	if err := s.store.AdvanceAndAppend(ctx, sessionID, session.CurrentStep, wireAnswer, correct, outcome.NextLevel, batch); err != nil {
		return nil, fmt.Errorf("append next batch: %w", err)
	}
	return &StepOutcome{Question: questions[0].Payload()}, nil
}

func (s *PlacementService) finalize(ctx context.Context, session *model.Session, wireAnswer string, correct bool, detected model.LanguageLevel) (*StepOutcome, error) {
	result := &model.Result{
		ID:            uuid.New(),
		SessionID:     session.ID,
		DetectedLevel: detected,
	}
	if err := s.store.FinalizeStep(ctx, session.ID, session.CurrentStep, wireAnswer, correct, result); err != nil {
		return nil, fmt.Errorf("finalize session: %w", err)
	}

	s.log.Info().
		Str("session_id", session.ID.String()).
		Str("result_id", result.ID.String()).
		Str("detected_level", detected.String()).
		Msg("Placement test finished")

	return &StepOutcome{Finished: true, ResultID: result.ID}, nil
}

// buildBatch draws one random question per group at the level and lays them
// out as progress steps following afterStep.
func (s *PlacementService) buildBatch(ctx context.Context, sessionID uuid.UUID, level model.LanguageLevel, afterStep int) ([]model.ProgressStep, []*model.Question, error) {
	groups, err := s.bank.ListGroups(ctx, level)
	if err != nil {
		return nil, nil, fmt.Errorf("list question groups: %w", err)
	}
	if len(groups) == 0 {
		return nil, nil, fmt.Errorf("%w: no questions at level %s", ErrExhaustedBank, level)
	}

	steps := make([]model.ProgressStep, 0, len(groups))
	questions := make([]*model.Question, 0, len(groups))
	for i, group := range groups {
		offset := rand.IntN(group.QuestionsCount)
		q, err := s.bank.PickFromGroup(ctx, level, group, offset)
		if err != nil {
			return nil, nil, fmt.Errorf("pick question for %s/%s/%s: %w", group.Category, group.AnswerType, group.TopicTitle, err)
		}
		steps = append(steps, model.ProgressStep{
			SessionID:  sessionID,
			StepNumber: afterStep + i + 1,
			QuestionID: q.ID,
			Level:      level,
		})
		questions = append(questions, q)
	}
	return steps, questions, nil
}

func (s *PlacementService) questionAt(ctx context.Context, sessionID uuid.UUID, stepNumber int) (*model.Question, error) {
	step, err := s.store.Step(ctx, sessionID, stepNumber)
	if err != nil {
		return nil, fmt.Errorf("get step %d: %w", stepNumber, err)
	}
	question, err := s.bank.GetByID(ctx, step.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("get question %d: %w", step.QuestionID, err)
	}
	return question, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, pgx.ErrNoRows)
}
