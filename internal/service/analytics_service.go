package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/lingvoclub/placement-backend/internal/config"
	"github.com/lingvoclub/placement-backend/internal/model"
	"github.com/lingvoclub/placement-backend/internal/repository"
)

// AnalyticsService assembles the admin funnel/analytics view and records
// landing page opens.
type AnalyticsService struct {
	repo *repository.AnalyticsRepository
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(repo *repository.AnalyticsRepository, rdb *redis.Client, log zerolog.Logger) *AnalyticsService {
	return &AnalyticsService{
		repo: repo,
		rdb:  rdb,
		log:  log.With().Str("component", "analytics_service").Logger(),
	}
}

// RecordPageOpened bumps the landing-page counter. Counting failures are
// logged, not surfaced: analytics must never break the visitor flow.
func (s *AnalyticsService) RecordPageOpened(ctx context.Context) {
	if err := s.rdb.Incr(ctx, config.CacheKey.PageOpenedCounterKey()).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to record page open")
	}
}

// Compute builds the full analytics payload: the visitor funnel, the
// distribution of self-assessed start levels and per-topic success across
// every session.
func (s *AnalyticsService) Compute(ctx context.Context) (*model.AllAnalytics, error) {
	pageOpens, err := s.rdb.Get(ctx, config.CacheKey.PageOpenedCounterKey()).Int()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("read page open counter: %w", err)
	}

	started, finished, err := s.repo.CountSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}

	// The funnel denominator is page opens; a started test always implies
	// an open even if the counter lagged.
	if pageOpens < started {
		pageOpens = started
	}

	analytics := &model.AllAnalytics{}
	if pageOpens > 0 {
		analytics.StagesAnalytics = model.StagesAnalytics{
			OpenedThePagePercentage:   (pageOpens - started) * 100 / pageOpens,
			StartedTheTestPercentage:  (started - finished) * 100 / pageOpens,
			FinishedTheTestPercentage: finished * 100 / pageOpens,
		}
	}

	if started > 0 {
		distribution, err := s.repo.StartLevelDistribution(ctx)
		if err != nil {
			return nil, fmt.Errorf("start level distribution: %w", err)
		}
		levels := make([]model.LanguageLevel, 0, len(distribution))
		for level := range distribution {
			levels = append(levels, level)
		}
		sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })
		for _, level := range levels {
			analytics.StartLevelSelectionDistribution = append(analytics.StartLevelSelectionDistribution, model.StartLevelCount{
				Level:      level.String(),
				Percentage: distribution[level] * 100 / started,
			})
		}
	}

	topics, err := s.repo.TopicsSuccess(ctx)
	if err != nil {
		return nil, fmt.Errorf("topics success: %w", err)
	}
	analytics.TopicsSuccess = topics

	return analytics, nil
}
