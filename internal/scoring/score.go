// Package scoring holds the pure placement logic: grading single answers
// and estimating a proficiency level from a session's history. Nothing in
// this package performs I/O.
package scoring

import (
	"encoding/json"
	"strings"

	"github.com/lingvoclub/placement-backend/internal/model"
)

// Score grades a raw wire answer against the question's answer key.
// It never fails: input that does not parse for the question's answer type
// simply scores false. Callers that must distinguish malformed input from a
// wrong answer validate with model.ParseGivenAnswer first.
func Score(q *model.Question, rawAnswer string) bool {
	given, err := model.ParseGivenAnswer(q.AnswerType, rawAnswer, q.OptionCount())
	if err != nil {
		return false
	}

	switch a := given.(type) {
	case model.SelectOneAnswer:
		correct, err := model.ParseGivenAnswer(model.AnswerTypeSelectOne, q.CorrectAnswer, q.OptionCount())
		if err != nil {
			return false
		}
		return a.Index == correct.(model.SelectOneAnswer).Index

	case model.SelectMultipleAnswer:
		correct, err := model.ParseGivenAnswer(model.AnswerTypeSelectMultiple, q.CorrectAnswer, q.OptionCount())
		if err != nil {
			return false
		}
		// Exact set match, no partial credit. Both sides are sorted by the
		// parser so an element-wise walk suffices.
		want := correct.(model.SelectMultipleAnswer).Indices
		if len(a.Indices) != len(want) {
			return false
		}
		for i := range want {
			if a.Indices[i] != want[i] {
				return false
			}
		}
		return true

	case model.FillTheBlankAnswer:
		given := normalizeBlank(a.Text)
		for _, accepted := range AcceptedAnswers(q.CorrectAnswer) {
			if given == normalizeBlank(accepted) {
				return true
			}
		}
		return false

	default:
		return false
	}
}

// AcceptedAnswers expands a fill-the-blank answer key into the set of
// accepted strings. The key is either a JSON-encoded list or a single bare
// string; both encodings occur in the question data.
func AcceptedAnswers(correctAnswer string) []string {
	trimmed := strings.TrimSpace(correctAnswer)
	if strings.HasPrefix(trimmed, "[") {
		var accepted []string
		if err := json.Unmarshal([]byte(trimmed), &accepted); err == nil {
			return accepted
		}
	}
	return []string{correctAnswer}
}

func normalizeBlank(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
