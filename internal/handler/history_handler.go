package handler

import (
	"net/http"
	"strconv"

	"anydl/internal/history"
	"anydl/internal/model"
	"anydl/internal/service"
	"anydl/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HistoryHandler serves the download history listing
type HistoryHandler struct {
	downloadService *service.DownloadService
	listMax         int
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(ds *service.DownloadService, listMax int) *HistoryHandler {
	return &HistoryHandler{downloadService: ds, listMax: listMax}
}

// List handles GET /api/history. Optional query params: platform, status,
// limit (capped at the configured maximum).
func (h *HistoryHandler) List(c *gin.Context) {
	f := history.Filter{
		Platform: c.Query("platform"),
		Status:   c.Query("status"),
		Limit:    h.listMax,
	}
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= h.listMax {
			f.Limit = n
		}
	}

	records, err := h.downloadService.History(f)
	if err != nil {
		logger.Logger.Error("History listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "history_failed",
			Message: "Failed to list download history",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":     len(records),
		"downloads": records,
	})
}
