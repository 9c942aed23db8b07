package scoring

import (
	"math"
	"sort"

	"github.com/lingvoclub/placement-backend/internal/model"
)

// RequiredSuccessPercentage is the pass threshold for one level's batch.
const RequiredSuccessPercentage = 70

// LevelStats is the aggregated outcome of one level's question batch.
type LevelStats struct {
	Level             model.LanguageLevel
	QuestionsCount    int
	CorrectCount      int
	SuccessPercentage int
}

// Passed reports whether the level's batch met the pass threshold.
func (s LevelStats) Passed() bool {
	return s.SuccessPercentage >= RequiredSuccessPercentage
}

// Outcome is the estimator's verdict after a completed level batch.
type Outcome struct {
	Finished      bool
	DetectedLevel model.LanguageLevel // valid when Finished
	NextLevel     model.LanguageLevel // valid when !Finished
}

// ComputeLevelStats folds a session's answered questions into per-level
// stats, ordered by when each level was first served.
func ComputeLevelStats(history []model.AnsweredQuestion) []LevelStats {
	byLevel := make(map[model.LanguageLevel]*LevelStats)
	var order []model.LanguageLevel
	for _, aq := range history {
		st, ok := byLevel[aq.Question.Level]
		if !ok {
			st = &LevelStats{Level: aq.Question.Level}
			byLevel[aq.Question.Level] = st
			order = append(order, aq.Question.Level)
		}
		st.QuestionsCount++
		if aq.IsCorrect {
			st.CorrectCount++
		}
	}

	stats := make([]LevelStats, 0, len(order))
	for _, level := range order {
		st := byLevel[level]
		// Rounded, not truncated: 16/23 is 69.57% and still passes.
		st.SuccessPercentage = int(math.Round(float64(st.CorrectCount) / float64(st.QuestionsCount) * 100))
		stats = append(stats, *st)
	}
	return stats
}

// Resolve decides, from the per-level stats so far, whether the test is over
// and at which level, or which level the ladder moves to next.
//
// The rule: once two consecutive levels disagree (one passed, one failed)
// the detected level is the passed one. A pass at MaxLevel finishes at
// MaxLevel; a fail at MinLevel finishes at A0. Otherwise the ladder steps up
// after a pass and down after a fail.
func Resolve(stats []LevelStats) Outcome {
	if len(stats) == 0 {
		return Outcome{}
	}

	last := stats[len(stats)-1]
	if len(stats) >= 2 {
		prev := stats[len(stats)-2]
		if last.Passed() != prev.Passed() {
			if last.Level > prev.Level {
				// Climbed and failed: settle at the level below.
				return Outcome{Finished: true, DetectedLevel: prev.Level}
			}
			// Descended and passed: settle here.
			return Outcome{Finished: true, DetectedLevel: last.Level}
		}
	}

	if last.Passed() {
		if last.Level == model.MaxLevel {
			return Outcome{Finished: true, DetectedLevel: model.MaxLevel}
		}
		return Outcome{NextLevel: last.Level.Next()}
	}
	if last.Level == model.MinLevel {
		return Outcome{Finished: true, DetectedLevel: model.LevelA0}
	}
	return Outcome{NextLevel: last.Level.Prev()}
}

// Estimate computes the final detected level and per-topic breakdown for a
// history. When Resolve would have continued the ladder (the bank ran dry
// mid-test), the detected level falls back to the highest passed level, or
// A0 if no level was passed.
func Estimate(history []model.AnsweredQuestion) (model.LanguageLevel, []model.TopicSuccess) {
	stats := ComputeLevelStats(history)
	outcome := Resolve(stats)

	detected := outcome.DetectedLevel
	if !outcome.Finished {
		detected = model.LevelA0
		for _, st := range stats {
			if st.Passed() && st.Level > detected {
				detected = st.Level
			}
		}
	}
	return detected, TopicBreakdown(history)
}

// TopicBreakdown tallies correct/total per (category, topic) over a history.
// Topics never attempted are absent. Order is stable: category, then topic.
func TopicBreakdown(history []model.AnsweredQuestion) []model.TopicSuccess {
	type key struct {
		category model.QuestionCategory
		topic    string
	}
	tally := make(map[key]*model.TopicSuccess)
	for _, aq := range history {
		k := key{aq.Question.Category, aq.Question.TopicTitle}
		ts, ok := tally[k]
		if !ok {
			ts = &model.TopicSuccess{Category: k.category, TopicTitle: k.topic}
			tally[k] = ts
		}
		ts.QuestionsCount++
		if aq.IsCorrect {
			ts.CorrectAnswersCount++
		}
	}

	breakdown := make([]model.TopicSuccess, 0, len(tally))
	for _, ts := range tally {
		breakdown = append(breakdown, *ts)
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Category != breakdown[j].Category {
			return breakdown[i].Category < breakdown[j].Category
		}
		return breakdown[i].TopicTitle < breakdown[j].TopicTitle
	})
	return breakdown
}

// Recommendation maps a detected level to the follow-up shown with the
// results. The top of the scale gets a terminal congratulation rather than
// a nonexistent higher group.
func Recommendation(detected model.LanguageLevel) string {
	switch {
	case detected == model.MaxLevel:
		return "Поздравляем! Вы отлично знаете голландский."
	case detected == model.LevelA0:
		return "Рекомендуем вам записаться в группу для начинающих " + model.MinLevel.DisplayName() + "."
	default:
		return "Рекомендуем вам записаться в группу " + detected.Next().DisplayName() + "."
	}
}
