package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/lingvoclub/placement-backend/internal/config"
	"github.com/lingvoclub/placement-backend/internal/middleware"
	"github.com/lingvoclub/placement-backend/internal/model"
	"github.com/lingvoclub/placement-backend/internal/response"
	"github.com/lingvoclub/placement-backend/internal/service"
	"github.com/lingvoclub/placement-backend/internal/validator"
)

// QuizHandler handles the test-taker flow: starting a session, polling its
// state and submitting answers.
type QuizHandler struct {
	placementService *service.PlacementService
	authService      *service.AuthService
	cfg              *config.Config
	log              zerolog.Logger
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(
	placementService *service.PlacementService,
	authService *service.AuthService,
	cfg *config.Config,
	log zerolog.Logger,
) *QuizHandler {
	return &QuizHandler{
		placementService: placementService,
		authService:      authService,
		cfg:              cfg,
		log:              log.With().Str("component", "quiz_handler").Logger(),
	}
}

// Start godoc
// POST /api/start
// Creates a session and returns the first question together with a signed
// session token. The token is also set as a cookie so browser clients
// resume transparently.
func (h *QuizHandler) Start(c *gin.Context) {
	var req model.StartRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	startLevel, err := model.ParseLanguageLevel(req.StartLevel)
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"start_level": "unknown language level",
		})
		return
	}

	session, question, err := h.placementService.Start(c.Request.Context(), req.FullName, req.Email, startLevel)
	if err != nil {
		if errors.Is(err, service.ErrExhaustedBank) {
			response.Fail(c, http.StatusConflict, response.ErrExhaustedBank)
			return
		}
		h.log.Error().Err(err).Msg("Failed to start placement test")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	token, err := h.authService.GenerateSessionToken(session.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to sign session token")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	c.SetCookie(middleware.SessionCookieName, token, int(h.cfg.TokenTTL.Seconds()), "/", "", false, true)
	response.Success(c, http.StatusCreated, gin.H{
		"session_token": token,
		"question":      question,
	})
}

// Status godoc
// GET /api/status
// Idempotent snapshot of the caller's session. Without a (valid) token the
// caller simply has not started yet.
func (h *QuizHandler) Status(c *gin.Context) {
	sessionID, ok := middleware.GetSessionID(c)
	if !ok {
		response.Success(c, http.StatusOK, gin.H{"status": model.SessionStatusNotStarted})
		return
	}

	view, err := h.placementService.Status(c.Request.Context(), sessionID)
	if err != nil {
		h.log.Error().Err(err).Str("session_id", sessionID.String()).Msg("Failed to load session status")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	switch view.Status {
	case model.SessionStatusFinished:
		response.Success(c, http.StatusOK, gin.H{
			"status":    view.Status,
			"user_uuid": view.ResultID,
		})
	case model.SessionStatusInProgress:
		response.Success(c, http.StatusOK, gin.H{
			"status":   view.Status,
			"question": view.Question,
		})
	default:
		response.Success(c, http.StatusOK, gin.H{"status": view.Status})
	}
}

// NextStep godoc
// POST /api/next-step
// Submits the answer to the currently presented question. Returns either
// the next question or, when the ladder resolves, the result UUID.
func (h *QuizHandler) NextStep(c *gin.Context) {
	sessionID, ok := middleware.GetSessionID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.NextStepRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	outcome, err := h.placementService.SubmitAnswer(c.Request.Context(), sessionID, req.Answer)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConcurrentModification):
			response.Fail(c, http.StatusConflict, response.ErrConcurrentModification)
		case errors.Is(err, service.ErrInvalidState):
			response.Fail(c, http.StatusConflict, response.ErrInvalidState)
		case errors.Is(err, service.ErrMalformedAnswer):
			response.Fail(c, http.StatusBadRequest, response.ErrMalformedAnswer)
		case errors.Is(err, service.ErrNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			h.log.Error().Err(err).Str("session_id", sessionID.String()).Msg("Failed to process answer")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	if outcome.Finished {
		response.Success(c, http.StatusOK, gin.H{
			"finished":  true,
			"user_uuid": outcome.ResultID,
		})
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"finished": false,
		"question": outcome.Question,
	})
}
