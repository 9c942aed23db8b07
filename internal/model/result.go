package model

import (
	"time"

	"github.com/google/uuid"
)

// Result is the immutable finalized outcome of a session. Its ID is the
// public handle shared with the test-taker; it grants read access to the
// projections but no further writes to the session.
type Result struct {
	ID            uuid.UUID     `json:"id"`
	SessionID     uuid.UUID     `json:"session_id"`
	DetectedLevel LanguageLevel `json:"detected_level"`
	CreatedAt     time.Time     `json:"created_at"`
}

// TopicSuccess is the per-topic tally within a session or across sessions.
type TopicSuccess struct {
	Category            QuestionCategory `json:"category"`
	TopicTitle          string           `json:"topic_title"`
	CorrectAnswersCount int              `json:"correct_answers_count"`
	QuestionsCount      int              `json:"questions_count"`
}

// SummarizedResults is the headline view of a finished session.
type SummarizedResults struct {
	DetectedLevel       LanguageLevel  `json:"detected_level"`
	DetectedLevelName   string         `json:"detected_level_name"`
	Recommendation      string         `json:"recommendation"`
	TotalQuestions      int            `json:"total_questions"`
	TotalCorrectAnswers int            `json:"total_correct_answers"`
	PerTopicBreakdown   []TopicSuccess `json:"per_topic_breakdown"`
}

// DetailedStep is one entry of the detailed results view: the question as
// served, the expected answer and what the test-taker submitted.
type DetailedStep struct {
	QuestionTitle string        `json:"question_title"`
	LanguageLevel LanguageLevel `json:"language_level"`
	AnswerType    AnswerType    `json:"answer_type"`
	AnswerOptions *string       `json:"answer_options"`
	Filepath      *string       `json:"filepath"`
	MediaType     MediaType     `json:"media_type"`
	CorrectAnswer string        `json:"correct_answer"`
	GivenAnswer   string        `json:"given_answer"`
}
