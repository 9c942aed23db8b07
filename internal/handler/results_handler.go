package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/lingvoclub/placement-backend/internal/response"
	"github.com/lingvoclub/placement-backend/internal/service"
)

// ResultsHandler serves the public result projections. The result UUID is
// the only credential: whoever holds it may read, nobody may write.
type ResultsHandler struct {
	resultService *service.ResultService
	log           zerolog.Logger
}

// NewResultsHandler creates a new ResultsHandler.
func NewResultsHandler(resultService *service.ResultService, log zerolog.Logger) *ResultsHandler {
	return &ResultsHandler{
		resultService: resultService,
		log:           log.With().Str("component", "results_handler").Logger(),
	}
}

// Summarized godoc
// GET /api/results/:uuid/summarized
func (h *ResultsHandler) Summarized(c *gin.Context) {
	resultID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	summary, err := h.resultService.LoadSummarized(c.Request.Context(), resultID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		h.log.Error().Err(err).Str("result_id", resultID.String()).Msg("Failed to load summarized results")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, summary)
}

// Detailed godoc
// GET /api/results/:uuid/detailed
func (h *ResultsHandler) Detailed(c *gin.Context) {
	resultID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	steps, err := h.resultService.LoadDetailed(c.Request.Context(), resultID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		h.log.Error().Err(err).Str("result_id", resultID.String()).Msg("Failed to load detailed results")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"steps": steps})
}
