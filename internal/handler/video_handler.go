package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"anydl/internal/extractor"
	"anydl/internal/model"
	"anydl/internal/service"
	"anydl/pkg/logger"
	"anydl/pkg/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VideoHandler handles metadata requests
type VideoHandler struct {
	videoService *service.VideoService
	cfg          *model.Config
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(vs *service.VideoService, cfg *model.Config) *VideoHandler {
	return &VideoHandler{
		videoService: vs,
		cfg:          cfg,
	}
}

// GetVideoInfo handles POST /api/video-info
func (h *VideoHandler) GetVideoInfo(c *gin.Context) {
	var req model.InfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "invalid_request",
			Message: "Video URL is required",
			Code:    http.StatusBadRequest,
		})
		return
	}

	if !validator.ValidateURL(req.URL, h.cfg.Security.MaxURLLength) {
		logger.Logger.Warn("Rejected URL", zap.String("url", req.URL))
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "invalid_url",
			Message: "URL is not a valid http(s) video link",
			Code:    http.StatusBadRequest,
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(h.cfg.Security.RequestTimeout)*time.Second)
	defer cancel()

	info, err := h.videoService.GetVideoInfo(ctx, req.URL)
	if err != nil {
		logger.Logger.Error("Failed to get video info", zap.Error(err), zap.String("url", req.URL))
		writeExtractorError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// HealthCheck handles GET /api/health
func (h *VideoHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "anydl",
	})
}

// writeExtractorError translates extractor failures into API error responses.
func writeExtractorError(c *gin.Context, err error) {
	var resp model.ErrorResponse
	switch {
	case errors.Is(err, extractor.ErrInvalidURL):
		resp = model.ErrorResponse{Error: "invalid_url", Message: "URL is not a valid http(s) video link", Code: http.StatusBadRequest}
	case errors.Is(err, extractor.ErrUnsupportedPlatform):
		resp = model.ErrorResponse{Error: "unsupported_platform", Message: "This site is not supported", Code: http.StatusBadRequest}
	case errors.Is(err, extractor.ErrUnavailable):
		resp = model.ErrorResponse{Error: "video_unavailable", Message: "Video is unavailable or has been removed", Code: http.StatusNotFound}
	case errors.Is(err, extractor.ErrPrivate):
		resp = model.ErrorResponse{Error: "video_private", Message: "Video is private", Code: http.StatusForbidden}
	case errors.Is(err, extractor.ErrAgeRestricted):
		resp = model.ErrorResponse{Error: "age_restricted", Message: "Video is age restricted", Code: http.StatusForbidden}
	case errors.Is(err, extractor.ErrAuthRequired):
		resp = model.ErrorResponse{Error: "auth_required", Message: "Video requires authentication", Code: http.StatusUnauthorized}
	default:
		resp = model.ErrorResponse{Error: "extraction_failed", Message: "Failed to process the video", Code: http.StatusInternalServerError}
	}
	c.JSON(resp.Code, resp)
}
