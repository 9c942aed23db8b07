package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lingvoclub/placement-backend/internal/model"
	"github.com/lingvoclub/placement-backend/internal/scoring"
)

// ResultStore reads finalized results. Implemented by
// repository.ResultRepository.
type ResultStore interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Result, error)
}

// ResultService serves the read-only projections of finished sessions.
type ResultService struct {
	results ResultStore
	store   SessionStore
}

// NewResultService creates a new ResultService.
func NewResultService(results ResultStore, store SessionStore) *ResultService {
	return &ResultService{results: results, store: store}
}

// LoadSummarized builds the headline view of a finished session: the
// detected level recorded at finalize time, the recommended follow-up and
// the per-topic tallies.
func (s *ResultService) LoadSummarized(ctx context.Context, resultID uuid.UUID) (*model.SummarizedResults, error) {
	result, err := s.results.Get(ctx, resultID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get result: %w", err)
	}

	history, err := s.store.History(ctx, result.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	breakdown := scoring.TopicBreakdown(history)
	summary := &model.SummarizedResults{
		DetectedLevel:     result.DetectedLevel,
		DetectedLevelName: result.DetectedLevel.DisplayName(),
		Recommendation:    scoring.Recommendation(result.DetectedLevel),
		PerTopicBreakdown: breakdown,
	}
	for _, topic := range breakdown {
		summary.TotalQuestions += topic.QuestionsCount
		summary.TotalCorrectAnswers += topic.CorrectAnswersCount
	}
	return summary, nil
}

// LoadDetailed returns every answered step of a finished session in order,
// with the expected and given answers side by side.
func (s *ResultService) LoadDetailed(ctx context.Context, resultID uuid.UUID) ([]model.DetailedStep, error) {
	result, err := s.results.Get(ctx, resultID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get result: %w", err)
	}

	history, err := s.store.History(ctx, result.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	steps := make([]model.DetailedStep, 0, len(history))
	for _, aq := range history {
		steps = append(steps, model.DetailedStep{
			QuestionTitle: aq.Question.QuestionTitle,
			LanguageLevel: aq.Question.Level,
			AnswerType:    aq.Question.AnswerType,
			AnswerOptions: aq.Question.AnswerOptions,
			Filepath:      aq.Question.Filepath,
			MediaType:     model.MediaTypeFromPath(aq.Question.Filepath),
			CorrectAnswer: aq.Question.CorrectAnswer,
			GivenAnswer:   aq.GivenAnswer,
		})
	}
	return steps, nil
}
