package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"anydl/internal/history"
	"anydl/internal/model"
	"anydl/internal/service"
	"anydl/pkg/format"
	"anydl/pkg/logger"
	"anydl/pkg/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// contentTypes maps served file extensions to their media types. Anything
// else is sent as an octet stream.
var contentTypes = map[string]string{
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"mkv":  "video/x-matroska",
	"mov":  "video/quicktime",
	"3gp":  "video/3gpp",
	"mp3":  "audio/mpeg",
	"m4a":  "audio/mp4",
}

// DownloadHandler handles download requests and file delivery
type DownloadHandler struct {
	downloadService *service.DownloadService
	quotaService    *service.QuotaService
	cfg             *model.Config
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(ds *service.DownloadService, qs *service.QuotaService, cfg *model.Config) *DownloadHandler {
	return &DownloadHandler{
		downloadService: ds,
		quotaService:    qs,
		cfg:             cfg,
	}
}

// StartDownload handles POST /api/download
func (h *DownloadHandler) StartDownload(c *gin.Context) {
	var req model.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Logger.Warn("Invalid download request", zap.Error(err))
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
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

	clientIP := c.ClientIP()
	if allowed, _ := h.quotaService.Allow(clientIP); !allowed {
		c.JSON(http.StatusTooManyRequests, model.ErrorResponse{
			Error:   "quota_exhausted",
			Message: "Daily download quota exhausted. Please try again after the quota resets.",
			Code:    http.StatusTooManyRequests,
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(h.cfg.Server.Timeout)*time.Second)
	defer cancel()

	resp, err := h.downloadService.Download(ctx, &req, clientIP)
	if err != nil {
		if errors.Is(err, service.ErrFileTooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, model.ErrorResponse{
				Error:   "file_too_large",
				Message: fmt.Sprintf("File exceeds the %dMB limit", h.cfg.Storage.MaxVideoSizeMB),
				Code:    http.StatusRequestEntityTooLarge,
			})
			return
		}
		logger.Logger.Error("Download failed", zap.Error(err), zap.String("url", req.URL))
		writeExtractorError(c, err)
		return
	}

	// Only merged files consume server bandwidth; direct redirects stream
	// from the source.
	if resp.Mode == history.ModeMerged {
		h.quotaService.Add(clientIP, resp.FileSize)
	}

	c.JSON(http.StatusOK, resp)
}

// GetFile handles GET /api/download-file/:id. Direct downloads redirect to
// the source stream; merged downloads serve the local file.
func (h *DownloadHandler) GetFile(c *gin.Context) {
	rec, ok := h.lookup(c)
	if !ok {
		return
	}

	if rec.Mode == history.ModeDirect {
		logger.Logger.Info("Redirecting to direct stream", zap.String("id", rec.ID))
		c.Redirect(http.StatusFound, rec.Target)
		return
	}

	if _, err := os.Stat(rec.Target); err != nil {
		logger.Logger.Warn("Merged file gone", zap.String("id", rec.ID), zap.String("path", rec.Target))
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			Error:   "not_found",
			Message: "File no longer available",
			Code:    http.StatusNotFound,
		})
		return
	}

	filename := downloadFilename(rec)
	c.Header("Content-Disposition", buildContentDispositionHeader(filename))
	if ct, ok := contentTypes[rec.Ext]; ok {
		c.Header("Content-Type", ct)
	} else {
		c.Header("Content-Type", "application/octet-stream")
	}
	c.File(rec.Target)

	logger.Logger.Info("File served",
		zap.String("id", rec.ID),
		zap.String("filename", filename))
}

// CheckStatus handles GET /api/check-status/:id
func (h *DownloadHandler) CheckStatus(c *gin.Context) {
	rec, ok := h.lookup(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, model.StatusResponse{
		Status:            rec.Status,
		Title:             rec.Title,
		FileSize:          rec.FileSize,
		FileSizeFormatted: format.FileSize(rec.FileSize),
		Error:             rec.ErrorMsg,
	})
}

func (h *DownloadHandler) lookup(c *gin.Context) (*history.Record, bool) {
	id := c.Param("id")
	rec, err := h.downloadService.Lookup(id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{
				Error:   "not_found",
				Message: "Download not found or expired",
				Code:    http.StatusNotFound,
			})
		} else {
			logger.Logger.Error("History lookup failed", zap.Error(err), zap.String("id", id))
			c.JSON(http.StatusInternalServerError, model.ErrorResponse{
				Error:   "lookup_failed",
				Message: "Failed to look up download",
				Code:    http.StatusInternalServerError,
			})
		}
		return nil, false
	}
	return rec, true
}

func downloadFilename(rec *history.Record) string {
	name := validator.TruncateFilename(validator.SanitizeFilename(rec.Title), 200)
	if name == "" {
		name = "video"
	}
	return name + "." + rec.Ext
}

// buildContentDispositionHeader builds a Content-Disposition header. Names
// that need it get RFC 5987 encoding alongside an ASCII fallback so legacy
// clients still see a suggested filename.
func buildContentDispositionHeader(filename string) string {
	needsEncoding := false
	for _, r := range filename {
		if r > 127 || r == '"' || r == '\\' || r == ';' || r == ',' {
			needsEncoding = true
			break
		}
	}
	if strings.ContainsAny(filename, " \t\n\r") {
		needsEncoding = true
	}

	if !needsEncoding {
		return fmt.Sprintf(`attachment; filename="%s"`, filename)
	}
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`,
		asciiFallback(filename), url.QueryEscape(filename))
}

// asciiFallback degrades a filename to plain ASCII for the quoted parameter.
func asciiFallback(filename string) string {
	var b strings.Builder
	b.Grow(len(filename))
	for _, r := range filename {
		switch {
		case r > 127, r == '"', r == '\\':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
