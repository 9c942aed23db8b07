package scoring

import (
	"testing"

	"github.com/lingvoclub/placement-backend/internal/model"
)

func strPtr(s string) *string { return &s }

func selectQuestion(answerType model.AnswerType, options, correct string) *model.Question {
	return &model.Question{
		Level:         model.LevelA1_1,
		Category:      model.CategoryGrammar,
		TopicTitle:    "articles",
		QuestionTitle: "q",
		AnswerType:    answerType,
		AnswerOptions: strPtr(options),
		CorrectAnswer: correct,
	}
}

func blankQuestion(correct string) *model.Question {
	return &model.Question{
		Level:         model.LevelA1_1,
		Category:      model.CategoryVocabulary,
		TopicTitle:    "family",
		QuestionTitle: "q",
		AnswerType:    model.AnswerTypeFillTheBlank,
		CorrectAnswer: correct,
	}
}

func TestScoreSelectOne(t *testing.T) {
	q := selectQuestion(model.AnswerTypeSelectOne, `["de","het","een"]`, "1")

	tests := []struct {
		name   string
		answer string
		want   bool
	}{
		{"correct index", "1", true},
		{"wrong index", "0", false},
		{"out of range", "3", false},
		{"not a number", "het", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(q, tt.answer); got != tt.want {
				t.Errorf("Score(%q) = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}

func TestScoreSelectMultipleExactSet(t *testing.T) {
	q := selectQuestion(model.AnswerTypeSelectMultiple, `["a","b","c","d"]`, "0,2")

	tests := []struct {
		name   string
		answer string
		want   bool
	}{
		{"exact set", "0,2", true},
		{"order does not matter", "2,0", true},
		{"subset gets no partial credit", "0", false},
		{"superset fails", "0,1,2", false},
		{"disjoint set", "1,3", false},
		{"duplicate index is malformed", "0,0,2", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(q, tt.answer); got != tt.want {
				t.Errorf("Score(%q) = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}

func TestScoreFillTheBlank(t *testing.T) {
	tests := []struct {
		name    string
		correct string
		answer  string
		want    bool
	}{
		{"exact match", "moeder", "moeder", true},
		{"case insensitive", "Moeder", "moeder", true},
		{"surrounding whitespace", "moeder", "  moeder ", true},
		{"wrong word", "moeder", "vader", false},
		{"json list first variant", `["fiets", "rijwiel"]`, "fiets", true},
		{"json list second variant", `["fiets", "rijwiel"]`, "Rijwiel", true},
		{"json list miss", `["fiets", "rijwiel"]`, "auto", false},
		{"bracket in a plain answer stays literal", "[sic]", "[sic]", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(blankQuestion(tt.correct), tt.answer); got != tt.want {
				t.Errorf("Score(correct=%q, answer=%q) = %v, want %v", tt.correct, tt.answer, got, tt.want)
			}
		})
	}
}

func TestAcceptedAnswers(t *testing.T) {
	got := AcceptedAnswers(`["een", "twee"]`)
	if len(got) != 2 || got[0] != "een" || got[1] != "twee" {
		t.Errorf("AcceptedAnswers(json list) = %v", got)
	}

	got = AcceptedAnswers("plain")
	if len(got) != 1 || got[0] != "plain" {
		t.Errorf("AcceptedAnswers(bare string) = %v", got)
	}

	// Malformed JSON falls back to the literal string.
	got = AcceptedAnswers(`["broken`)
	if len(got) != 1 || got[0] != `["broken` {
		t.Errorf("AcceptedAnswers(broken json) = %v", got)
	}
}
