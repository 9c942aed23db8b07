package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/lingvoclub/placement-backend/internal/model"
	"github.com/lingvoclub/placement-backend/internal/response"
	"github.com/lingvoclub/placement-backend/internal/service"
	"github.com/lingvoclub/placement-backend/internal/validator"
)

// AdminHandler handles the password-gated admin endpoints. There are no
// admin accounts, only one shared password checked on every call.
type AdminHandler struct {
	authService      *service.AuthService
	exportService    *service.ExportService
	analyticsService *service.AnalyticsService
	log              zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	authService *service.AuthService,
	exportService *service.ExportService,
	analyticsService *service.AnalyticsService,
	log zerolog.Logger,
) *AdminHandler {
	return &AdminHandler{
		authService:      authService,
		exportService:    exportService,
		analyticsService: analyticsService,
		log:              log.With().Str("component", "admin_handler").Logger(),
	}
}

// ValidatePassword godoc
// POST /api/admin/validate-password
// Lets the admin UI check the password before showing its controls.
func (h *AdminHandler) ValidatePassword(c *gin.Context) {
	if !h.checkPassword(c) {
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportResults godoc
// POST /api/admin/export-results
// Enqueues an xlsx export of all finished sessions; the worker writes the
// file asynchronously.
func (h *AdminHandler) ExportResults(c *gin.Context) {
	if !h.checkPassword(c) {
		return
	}

	if err := h.exportService.Enqueue(c.Request.Context()); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue results export")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"enqueued": true})
}

// Analytics godoc
// POST /api/admin/analytics
func (h *AdminHandler) Analytics(c *gin.Context) {
	if !h.checkPassword(c) {
		return
	}

	analytics, err := h.analyticsService.Compute(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute analytics")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, analytics)
}

// checkPassword binds the admin password from the body and verifies it.
// On failure it writes the error response and returns false.
func (h *AdminHandler) checkPassword(c *gin.Context) bool {
	var req model.AdminRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return false
	}

	if err := h.authService.CheckAdminPassword(c.Request.Context(), req.AdminPassword); err != nil {
		if errors.Is(err, service.ErrInvalidPassword) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidPassword)
			return false
		}
		h.log.Error().Err(err).Msg("Failed to check admin password")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return false
	}
	return true
}
