package model

import (
	"encoding/json"
	"strings"
)

// QuestionCategory groups questions by the skill they probe.
type QuestionCategory string

const (
	CategoryGrammar    QuestionCategory = "grammar"
	CategoryVocabulary QuestionCategory = "vocabulary"
	CategoryReading    QuestionCategory = "reading"
	CategoryListening  QuestionCategory = "listening"
)

// AnswerType selects the scoring and wire-format rules for a question.
type AnswerType string

const (
	AnswerTypeSelectOne      AnswerType = "select_one"
	AnswerTypeSelectMultiple AnswerType = "select_multiple"
	AnswerTypeFillTheBlank   AnswerType = "fill_the_blank"
)

// MediaType describes the attachment served alongside a question.
type MediaType string

const (
	MediaTypeNone  MediaType = "none"
	MediaTypeText  MediaType = "text"
	MediaTypeAudio MediaType = "audio"
)

// Question is a single bank entry. Immutable once loaded.
//
// AnswerOptions is a JSON-encoded array of option strings for the select
// types and empty for fill-the-blank. CorrectAnswer is an index string for
// select_one, comma-joined sorted indices for select_multiple, and either a
// bare accepted string or a JSON array of accepted strings for
// fill_the_blank.
type Question struct {
	ID            int              `json:"id"`
	Level         LanguageLevel    `json:"level"`
	Category      QuestionCategory `json:"category"`
	TopicTitle    string           `json:"topic_title"`
	QuestionTitle string           `json:"question_title"`
	Filepath      *string          `json:"filepath,omitempty"`
	AnswerType    AnswerType       `json:"answer_type"`
	AnswerOptions *string          `json:"answer_options,omitempty"`
	CorrectAnswer string           `json:"correct_answer"`
}

// MediaType derives the attachment kind from the question's category.
// Reading questions carry a text file, listening questions an audio file.
func (q *Question) MediaType() MediaType {
	switch q.Category {
	case CategoryReading:
		return MediaTypeText
	case CategoryListening:
		return MediaTypeAudio
	default:
		return MediaTypeNone
	}
}

// OptionCount returns the number of answer options, or 0 for fill-the-blank.
func (q *Question) OptionCount() int {
	if q.AnswerOptions == nil {
		return 0
	}
	var opts []string
	if err := json.Unmarshal([]byte(*q.AnswerOptions), &opts); err != nil {
		return 0
	}
	return len(opts)
}

// MediaTypeFromPath derives the attachment kind from a stored filepath.
// Used for detailed results where only the filepath survives.
func MediaTypeFromPath(filepath *string) MediaType {
	if filepath == nil {
		return MediaTypeNone
	}
	switch {
	case strings.HasSuffix(*filepath, ".txt"):
		return MediaTypeText
	case strings.HasSuffix(*filepath, ".mp3"):
		return MediaTypeAudio
	default:
		return MediaTypeNone
	}
}

// QuestionPayload is the client-facing projection of a question. The
// correct answer never leaves the server while a test is in progress.
type QuestionPayload struct {
	QuestionTitle string     `json:"question_title"`
	AnswerType    AnswerType `json:"answer_type"`
	AnswerOptions *string    `json:"answer_options"`
	MediaType     MediaType  `json:"media_type"`
	Filepath      *string    `json:"filepath"`
}

// Payload builds the client-facing projection of q.
func (q *Question) Payload() *QuestionPayload {
	return &QuestionPayload{
		QuestionTitle: q.QuestionTitle,
		AnswerType:    q.AnswerType,
		AnswerOptions: q.AnswerOptions,
		MediaType:     q.MediaType(),
		Filepath:      q.Filepath,
	}
}

// QuestionGroup identifies one (category, answer type, topic) bucket at a
// level. The bank serves exactly one random question per group per session.
type QuestionGroup struct {
	Category       QuestionCategory
	AnswerType     AnswerType
	TopicTitle     string
	QuestionsCount int
}
