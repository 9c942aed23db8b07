package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lingvoclub/placement-backend/internal/response"
	"github.com/lingvoclub/placement-backend/internal/service"
)

// MediaHandler serves question attachments: reading passages and listening
// audio clips.
type MediaHandler struct {
	mediaService *service.MediaService
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// Serve godoc
// GET /api/media/*filepath
// Streams the attachment named by the question's filepath field.
func (h *MediaHandler) Serve(c *gin.Context) {
	full, err := h.mediaService.Resolve(c.Param("filepath"))
	if err != nil {
		if errors.Is(err, service.ErrMediaNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	c.File(full)
}
