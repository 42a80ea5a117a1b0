package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"anydl/internal/extractor"
	"anydl/internal/history"
	"anydl/internal/model"
	"anydl/internal/platform"
	"anydl/internal/resolver"
	"anydl/internal/storage"
	"anydl/pkg/format"
	"anydl/pkg/logger"
	"anydl/pkg/validator"

	"go.uber.org/zap"
)

// ErrFileTooLarge is returned when a remuxed download exceeds the size limit.
var ErrFileTooLarge = fmt.Errorf("file exceeds maximum size")

// DownloadService orchestrates downloads: it resolves a direct stream when
// one exists and falls back to download-and-remux otherwise. Every completed
// download leaves a history record.
type DownloadService struct {
	ex    Extractor
	repo  history.Repository
	store *storage.Manager
}

// NewDownloadService creates a download service.
func NewDownloadService(ex Extractor, repo history.Repository, store *storage.Manager) *DownloadService {
	return &DownloadService{ex: ex, repo: repo, store: store}
}

// Download handles one download request and returns the recorded outcome.
func (s *DownloadService) Download(ctx context.Context, req *model.DownloadRequest, clientIP string) (*model.DownloadResponse, error) {
	quality := req.Quality
	if !extractor.ValidQuality(quality) {
		quality = "best"
	}

	meta, err := s.ex.Extract(ctx, req.URL)
	if err != nil {
		return nil, err
	}
	plat := platform.Detect(req.URL)

	var res resolver.Resolution
	if quality == "audio" {
		res = resolver.ResolveAudio(meta.Formats)
	} else {
		res = resolver.ResolveVideo(meta.Formats, resolver.CeilingFor(quality))
	}

	switch res.Mode {
	case resolver.ModeDirect:
		return s.recordDirect(meta, res, req.URL, plat, quality, clientIP)
	case resolver.ModeInvalidURL:
		// The chosen URL turned out to be a segmented playlist despite its
		// protocol tag. Only the merge tool can serve this source.
		logger.Logger.Warn("Selected format has a playlist URL, remuxing instead",
			zap.String("url", req.URL), zap.String("quality", quality))
	case resolver.ModeNone:
		logger.Logger.Info("No direct format, remuxing",
			zap.String("url", req.URL), zap.String("quality", quality))
	}

	return s.remux(ctx, meta, req.URL, plat, quality, clientIP)
}

// recordDirect persists a history record pointing at the source URL.
func (s *DownloadService) recordDirect(meta *extractor.Metadata, res resolver.Resolution, videoURL, plat, quality, clientIP string) (*model.DownloadResponse, error) {
	rec := &history.Record{
		ID:        newRecordID(),
		URL:       videoURL,
		Title:     meta.Title,
		Platform:  plat,
		Quality:   quality,
		Status:    history.StatusCompleted,
		Mode:      history.ModeDirect,
		Target:    res.Format.URL,
		Ext:       res.Ext,
		FileSize:  res.Format.Filesize,
		Duration:  meta.Duration,
		Thumbnail: meta.Thumbnail,
		ClientIP:  clientIP,
	}
	if err := s.repo.Create(rec); err != nil {
		return nil, fmt.Errorf("persist record: %w", err)
	}

	logger.Logger.Info("Direct format resolved",
		zap.String("id", rec.ID),
		zap.String("quality", quality),
		zap.Int("height", res.Format.Height),
		zap.String("ext", res.Ext))
	return response(rec), nil
}

// remux downloads through the extractor, merging streams locally, and
// persists a record pointing at the produced file.
func (s *DownloadService) remux(ctx context.Context, meta *extractor.Metadata, videoURL, plat, quality, clientIP string) (*model.DownloadResponse, error) {
	ext := "mp4"
	if quality == "audio" {
		ext = "mp3"
	}

	if err := s.store.EnsureDownloadDir(); err != nil {
		return nil, fmt.Errorf("prepare download dir: %w", err)
	}

	filename := validator.UniqueFilename(meta.Title, ext)
	outBase := strings.TrimSuffix(s.store.DownloadPath(filename), "."+ext)

	path, err := s.ex.DownloadAndRemux(ctx, videoURL, quality, outBase)
	if err != nil {
		s.recordFailure(meta, videoURL, plat, quality, clientIP, err)
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		err = fmt.Errorf("stat download: %w", err)
		s.recordFailure(meta, videoURL, plat, quality, clientIP, err)
		return nil, err
	}
	if !s.store.ValidateFileSize(info.Size()) {
		os.Remove(path)
		err = fmt.Errorf("%w: limit %dMB", ErrFileTooLarge, s.store.MaxSizeMB())
		s.recordFailure(meta, videoURL, plat, quality, clientIP, err)
		return nil, err
	}

	rec := &history.Record{
		ID:        newRecordID(),
		URL:       videoURL,
		Title:     meta.Title,
		Platform:  plat,
		Quality:   quality,
		Status:    history.StatusCompleted,
		Mode:      history.ModeMerged,
		Target:    path,
		Ext:       strings.TrimPrefix(filepath.Ext(path), "."),
		FileSize:  info.Size(),
		Duration:  meta.Duration,
		Thumbnail: meta.Thumbnail,
		ClientIP:  clientIP,
	}
	if err := s.repo.Create(rec); err != nil {
		return nil, fmt.Errorf("persist record: %w", err)
	}
	s.store.Track(rec.ID, path)

	return response(rec), nil
}

// recordFailure leaves a failed record so the status endpoint and history
// listing can report what went wrong.
func (s *DownloadService) recordFailure(meta *extractor.Metadata, videoURL, plat, quality, clientIP string, cause error) {
	rec := &history.Record{
		ID:        newRecordID(),
		URL:       videoURL,
		Title:     meta.Title,
		Platform:  plat,
		Quality:   quality,
		Status:    history.StatusFailed,
		Mode:      history.ModeMerged,
		Duration:  meta.Duration,
		Thumbnail: meta.Thumbnail,
		ClientIP:  clientIP,
		ErrorMsg:  cause.Error(),
	}
	if err := s.repo.Create(rec); err != nil {
		logger.Logger.Error("Failed to persist failure record",
			zap.String("url", videoURL), zap.Error(err))
	}
}

// Lookup returns the history record for a download id.
func (s *DownloadService) Lookup(id string) (*history.Record, error) {
	return s.repo.Get(id)
}

// History lists past downloads.
func (s *DownloadService) History(f history.Filter) ([]history.Record, error) {
	return s.repo.List(f)
}

func response(rec *history.Record) *model.DownloadResponse {
	return &model.DownloadResponse{
		ID:                rec.ID,
		Title:             rec.Title,
		FileSize:          rec.FileSize,
		FileSizeFormatted: format.FileSize(rec.FileSize),
		Duration:          rec.Duration,
		DurationFormatted: format.Duration(rec.Duration),
		Platform:          rec.Platform,
		Thumbnail:         rec.Thumbnail,
		Ext:               rec.Ext,
		Mode:              rec.Mode,
	}
}

func newRecordID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
