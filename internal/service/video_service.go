package service

import (
	"context"
	"fmt"
	"sort"

	"anydl/internal/cache"
	"anydl/internal/extractor"
	"anydl/internal/model"
	"anydl/internal/platform"
	"anydl/pkg/logger"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Extractor is the capability the services need from the yt-dlp wrapper.
type Extractor interface {
	Extract(ctx context.Context, url string) (*extractor.Metadata, error)
	DownloadAndRemux(ctx context.Context, url, quality, outBase string) (string, error)
}

// VideoService answers metadata queries.
type VideoService struct {
	ex    Extractor
	cache *cache.MetadataCache
}

// NewVideoService creates a video service.
func NewVideoService(ex Extractor, mc *cache.MetadataCache) *VideoService {
	return &VideoService{ex: ex, cache: mc}
}

// GetVideoInfo extracts (or serves from cache) metadata for a video URL.
func (s *VideoService) GetVideoInfo(ctx context.Context, videoURL string) (*model.VideoInfo, error) {
	if !extractor.ValidateURL(videoURL) {
		return nil, fmt.Errorf("%w: %s", extractor.ErrInvalidURL, videoURL)
	}

	if cached := s.cache.Get(ctx, videoURL); cached != nil {
		logger.Logger.Debug("Metadata served from cache", zap.String("url", videoURL))
		return cached, nil
	}

	meta, err := s.ex.Extract(ctx, videoURL)
	if err != nil {
		return nil, err
	}

	info := &model.VideoInfo{
		URL:          videoURL,
		Title:        meta.Title,
		Platform:     platform.Detect(videoURL),
		Duration:     meta.Duration,
		ThumbnailURL: meta.Thumbnail,
		Uploader:     meta.Uploader,
		ViewCount:    meta.ViewCount,
		Formats:      displayFormats(meta.Formats),
	}

	s.cache.Put(ctx, videoURL, info)
	return info, nil
}

// displayFormats builds the quality picker list: one entry per height,
// tallest first. Audio-only renditions carry no height and are dropped.
func displayFormats(formats []model.FormatDescriptor) []model.DisplayFormat {
	withHeight := lo.Filter(formats, func(f model.FormatDescriptor, _ int) bool {
		return f.Height > 0
	})
	unique := lo.UniqBy(withHeight, func(f model.FormatDescriptor) int {
		return f.Height
	})

	out := lo.Map(unique, func(f model.FormatDescriptor, _ int) model.DisplayFormat {
		ext := f.Ext
		if ext == "" {
			ext = "mp4"
		}
		return model.DisplayFormat{
			Quality:  fmt.Sprintf("%dp", f.Height),
			Height:   f.Height,
			Ext:      ext,
			Filesize: f.Filesize,
		}
	})

	sort.Slice(out, func(i, j int) bool { return out[i].Height > out[j].Height })
	return out
}
