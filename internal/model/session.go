package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates placement session states. Transitions only move
// forward: NOT_STARTED -> IN_PROGRESS -> FINISHED.
type SessionStatus string

const (
	SessionStatusNotStarted SessionStatus = "NOT_STARTED"
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusFinished   SessionStatus = "FINISHED"
)

// Session is one test-taker's placement attempt. Only the placement service
// mutates it; once FINISHED it is read-only and addressed by its result ID.
type Session struct {
	ID            uuid.UUID     `json:"id"`
	FullName      string        `json:"full_name"`
	Email         string        `json:"email"`
	StartLevel    LanguageLevel `json:"start_level"`
	ChoseDontKnow bool          `json:"chose_dont_know"`
	Status        SessionStatus `json:"status"`
	CurrentLevel  LanguageLevel `json:"current_level"`
	CurrentStep   int           `json:"current_step"`
	LevelEndStep  int           `json:"level_end_step"`
	CreatedAt     time.Time     `json:"created_at"`
	FinishedAt    *time.Time    `json:"finished_at,omitempty"`
	ResultID      *uuid.UUID    `json:"result_id,omitempty"`
}

// ProgressStep records one served question within a session, and the answer
// once it arrives. Correctness is fixed at submit time.
type ProgressStep struct {
	SessionID   uuid.UUID     `json:"session_id"`
	StepNumber  int           `json:"step_number"`
	QuestionID  int           `json:"question_id"`
	Level       LanguageLevel `json:"level"`
	GivenAnswer *string       `json:"given_answer,omitempty"`
	IsCorrect   *bool         `json:"is_correct,omitempty"`
	AnsweredAt  *time.Time    `json:"answered_at,omitempty"`
}

// AnsweredQuestion joins a completed progress step with its question. It is
// the unit the estimator and the result projections work over.
type AnsweredQuestion struct {
	Question    Question
	StepNumber  int
	GivenAnswer string
	IsCorrect   bool
}

// StartRequest is the payload for starting a placement test.
type StartRequest struct {
	FullName   string `json:"full_name" binding:"required,min=1,max=200"`
	Email      string `json:"email" binding:"required,email,max=200"`
	StartLevel string `json:"start_level" binding:"required,language_level"`
}

// NextStepRequest is the payload for submitting an answer.
type NextStepRequest struct {
	Answer string `json:"answer" binding:"required,max=2000"`
}

// AdminRequest carries the shared admin password.
type AdminRequest struct {
	AdminPassword string `json:"admin_password" binding:"required"`
}
