package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"anydl/internal/extractor"
	"anydl/internal/history"
	"anydl/internal/model"
	"anydl/internal/storage"
	"anydl/pkg/logger"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Logger = zap.NewNop()
	os.Exit(m.Run())
}

// fakeExtractor satisfies Extractor without shelling out.
type fakeExtractor struct {
	meta       *extractor.Metadata
	extractErr error
	remuxErr   error
	remuxCalls int
}

func (f *fakeExtractor) Extract(ctx context.Context, url string) (*extractor.Metadata, error) {
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	return f.meta, nil
}

func (f *fakeExtractor) DownloadAndRemux(ctx context.Context, url, quality, outBase string) (string, error) {
	f.remuxCalls++
	if f.remuxErr != nil {
		return "", f.remuxErr
	}
	ext := ".mp4"
	if quality == "audio" {
		ext = ".mp3"
	}
	path := outBase + ext
	if err := os.WriteFile(path, []byte("media bytes"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func newTestDownloadService(t *testing.T, ex Extractor, maxMB int) (*DownloadService, history.Repository) {
	t.Helper()
	store := storage.NewManager(&model.StorageConfig{
		DownloadDir:     t.TempDir(),
		MaxVideoSizeMB:  maxMB,
		CleanupInterval: 3600,
		FileTTLSeconds:  3600,
	})
	repo := history.NewMemory()
	return NewDownloadService(ex, repo, store), repo
}

func premergedMeta() *extractor.Metadata {
	return &extractor.Metadata{
		Title:     "Test Clip",
		Duration:  90,
		Thumbnail: "https://cdn/thumb.jpg",
		Formats: []model.FormatDescriptor{
			{URL: "https://cdn/480.mp4", Ext: "mp4", Protocol: "https", Height: 480, VideoCodec: "avc1", AudioCodec: "mp4a", Filesize: 1000},
			{URL: "https://cdn/720.mp4", Ext: "mp4", Protocol: "https", Height: 720, VideoCodec: "avc1", AudioCodec: "mp4a", Filesize: 2000},
		},
	}
}

func segmentedMeta() *extractor.Metadata {
	return &extractor.Metadata{
		Title:    "HLS Only",
		Duration: 30,
		Formats: []model.FormatDescriptor{
			{URL: "https://cdn/master.m3u8", Ext: "mp4", Protocol: "m3u8_native", Height: 720, VideoCodec: "avc1", AudioCodec: "mp4a"},
		},
	}
}

func TestDownloadDirect(t *testing.T) {
	ex := &fakeExtractor{meta: premergedMeta()}
	svc, repo := newTestDownloadService(t, ex, 100)

	resp, err := svc.Download(context.Background(), &model.DownloadRequest{
		URL:     "https://www.youtube.com/watch?v=abc",
		Quality: "1080",
	}, "1.2.3.4")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}

	if resp.Mode != history.ModeDirect {
		t.Errorf("mode = %q, want direct", resp.Mode)
	}
	if ex.remuxCalls != 0 {
		t.Errorf("remux called %d times, want 0", ex.remuxCalls)
	}

	rec, err := repo.Get(resp.ID)
	if err != nil {
		t.Fatalf("record not persisted: %v", err)
	}
	if rec.Target != "https://cdn/720.mp4" {
		t.Errorf("record target = %q, want the 720p url", rec.Target)
	}
	if rec.Platform != "youtube" {
		t.Errorf("record platform = %q, want youtube", rec.Platform)
	}
	if rec.Status != history.StatusCompleted {
		t.Errorf("record status = %q, want completed", rec.Status)
	}
}

func TestDownloadRemuxFallback(t *testing.T) {
	ex := &fakeExtractor{meta: segmentedMeta()}
	svc, repo := newTestDownloadService(t, ex, 100)

	resp, err := svc.Download(context.Background(), &model.DownloadRequest{
		URL:     "https://vimeo.com/123",
		Quality: "720",
	}, "1.2.3.4")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}

	if resp.Mode != history.ModeMerged {
		t.Errorf("mode = %q, want merged", resp.Mode)
	}
	if ex.remuxCalls != 1 {
		t.Errorf("remux called %d times, want 1", ex.remuxCalls)
	}

	rec, err := repo.Get(resp.ID)
	if err != nil {
		t.Fatalf("record not persisted: %v", err)
	}
	if _, err := os.Stat(rec.Target); err != nil {
		t.Errorf("merged file missing: %v", err)
	}
	if filepath.Ext(rec.Target) != ".mp4" {
		t.Errorf("merged file ext = %q, want .mp4", filepath.Ext(rec.Target))
	}
	if rec.FileSize == 0 {
		t.Error("record file size not set")
	}
}

func TestDownloadAudioDirect(t *testing.T) {
	ex := &fakeExtractor{meta: &extractor.Metadata{
		Title:    "Podcast",
		Duration: 600,
		Formats: []model.FormatDescriptor{
			{URL: "https://cdn/low.opus", Ext: "opus", Protocol: "https", VideoCodec: "none", AudioCodec: "opus", AudioBR: 64},
			{URL: "https://cdn/high.opus", Ext: "opus", Protocol: "https", VideoCodec: "none", AudioCodec: "opus", AudioBR: 160},
		},
	}}
	svc, repo := newTestDownloadService(t, ex, 100)

	resp, err := svc.Download(context.Background(), &model.DownloadRequest{
		URL:     "https://www.youtube.com/watch?v=abc",
		Quality: "audio",
	}, "1.2.3.4")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}

	if resp.Mode != history.ModeDirect {
		t.Errorf("mode = %q, want direct", resp.Mode)
	}
	if resp.Ext != "webm" {
		t.Errorf("ext = %q, want normalized webm", resp.Ext)
	}

	rec, _ := repo.Get(resp.ID)
	if rec.Target != "https://cdn/high.opus" {
		t.Errorf("record target = %q, want highest bitrate url", rec.Target)
	}
}

func TestDownloadAudioRemuxWhenOnlyMuxed(t *testing.T) {
	ex := &fakeExtractor{meta: &extractor.Metadata{
		Title:    "Muxed Only",
		Duration: 60,
		Formats: []model.FormatDescriptor{
			{URL: "https://cdn/muxed.mp4", Ext: "mp4", Protocol: "https", Height: 720, VideoCodec: "avc1", AudioCodec: "mp4a"},
		},
	}}
	svc, _ := newTestDownloadService(t, ex, 100)

	resp, err := svc.Download(context.Background(), &model.DownloadRequest{
		URL:     "https://vimeo.com/123",
		Quality: "audio",
	}, "1.2.3.4")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}

	if resp.Mode != history.ModeMerged {
		t.Errorf("mode = %q, want merged (muxed streams never serve audio requests)", resp.Mode)
	}
	if resp.Ext != "mp3" {
		t.Errorf("ext = %q, want mp3", resp.Ext)
	}
	if ex.remuxCalls != 1 {
		t.Errorf("remux called %d times, want 1", ex.remuxCalls)
	}
}

func TestDownloadRejectsOversizedRemux(t *testing.T) {
	ex := &fakeExtractor{meta: segmentedMeta()}
	svc, repo := newTestDownloadService(t, ex, 0) // zero MB limit

	_, err := svc.Download(context.Background(), &model.DownloadRequest{
		URL:     "https://vimeo.com/123",
		Quality: "720",
	}, "1.2.3.4")
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("Download error = %v, want ErrFileTooLarge", err)
	}

	failed, err := repo.List(history.Filter{Status: history.StatusFailed})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(failed) != 1 {
		t.Fatalf("got %d failed records, want 1", len(failed))
	}
	if failed[0].ErrorMsg == "" {
		t.Error("failed record carries no error message")
	}
}

func TestDownloadRemuxFailureLeavesFailedRecord(t *testing.T) {
	ex := &fakeExtractor{meta: segmentedMeta(), remuxErr: extractor.ErrDownloadFailed}
	svc, repo := newTestDownloadService(t, ex, 100)

	_, err := svc.Download(context.Background(), &model.DownloadRequest{
		URL:     "https://vimeo.com/123",
		Quality: "720",
	}, "1.2.3.4")
	if !errors.Is(err, extractor.ErrDownloadFailed) {
		t.Fatalf("Download error = %v, want ErrDownloadFailed", err)
	}

	failed, err := repo.List(history.Filter{Status: history.StatusFailed})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(failed) != 1 {
		t.Fatalf("got %d failed records, want 1", len(failed))
	}
	rec := failed[0]
	if rec.Title != "HLS Only" || rec.Platform != "vimeo" {
		t.Errorf("failed record = %+v, missing metadata", rec)
	}
	if rec.ErrorMsg == "" {
		t.Error("failed record carries no error message")
	}
}

func TestDownloadExtractFailurePropagates(t *testing.T) {
	ex := &fakeExtractor{extractErr: extractor.ErrUnavailable}
	svc, _ := newTestDownloadService(t, ex, 100)

	_, err := svc.Download(context.Background(), &model.DownloadRequest{
		URL:     "https://www.youtube.com/watch?v=gone",
		Quality: "best",
	}, "1.2.3.4")
	if !errors.Is(err, extractor.ErrUnavailable) {
		t.Fatalf("Download error = %v, want ErrUnavailable", err)
	}
}

func TestDownloadUnknownQualityDefaultsToBest(t *testing.T) {
	ex := &fakeExtractor{meta: premergedMeta()}
	svc, repo := newTestDownloadService(t, ex, 100)

	resp, err := svc.Download(context.Background(), &model.DownloadRequest{
		URL:     "https://www.youtube.com/watch?v=abc",
		Quality: "not-a-tier",
	}, "1.2.3.4")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}

	rec, _ := repo.Get(resp.ID)
	if rec.Quality != "best" {
		t.Errorf("record quality = %q, want best", rec.Quality)
	}
	if rec.Target != "https://cdn/720.mp4" {
		t.Errorf("record target = %q, want tallest premerged", rec.Target)
	}
}
