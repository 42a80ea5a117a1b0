package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"anydl/internal/model"
	"anydl/pkg/logger"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Logger = zap.NewNop()
	os.Exit(m.Run())
}

func newTestManager(t *testing.T, ttlSeconds int) *Manager {
	t.Helper()
	m := NewManager(&model.StorageConfig{
		DownloadDir:     t.TempDir(),
		MaxVideoSizeMB:  1,
		CleanupInterval: 3600,
		FileTTLSeconds:  ttlSeconds,
	})
	if err := m.EnsureDownloadDir(); err != nil {
		t.Fatalf("EnsureDownloadDir: %v", err)
	}
	return m
}

func TestValidateFileSize(t *testing.T) {
	m := newTestManager(t, 60)

	if !m.ValidateFileSize(512 * 1024) {
		t.Error("ValidateFileSize(512KB) = false, want true")
	}
	if m.ValidateFileSize(2 * 1024 * 1024) {
		t.Error("ValidateFileSize(2MB) = true, want false with 1MB limit")
	}
}

func TestCleanupRemovesExpiredTrackedFiles(t *testing.T) {
	m := newTestManager(t, 0) // expire immediately

	path := m.DownloadPath("video.mp4")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	m.Track("dl1", path)

	if got := m.TrackedCount(); got != 1 {
		t.Fatalf("TrackedCount = %d, want 1", got)
	}

	time.Sleep(10 * time.Millisecond)
	m.Cleanup()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expired file still exists after Cleanup")
	}
	if got := m.TrackedCount(); got != 0 {
		t.Errorf("TrackedCount after cleanup = %d, want 0", got)
	}
}

func TestCleanupKeepsFreshFiles(t *testing.T) {
	m := newTestManager(t, 3600)

	path := m.DownloadPath("video.mp4")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	m.Track("dl1", path)

	m.Cleanup()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("fresh file removed by Cleanup: %v", err)
	}
	if got := m.TrackedCount(); got != 1 {
		t.Errorf("TrackedCount = %d, want 1", got)
	}
}

func TestSweepOrphans(t *testing.T) {
	m := newTestManager(t, 3600)

	// Untracked leftover from a previous run, backdated past the cutoff.
	stale := filepath.Join(m.cfg.DownloadDir, "stale.mp4")
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("backdate fixture: %v", err)
	}

	fresh := filepath.Join(m.cfg.DownloadDir, "fresh.mp4")
	if err := os.WriteFile(fresh, []byte("new"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	deleted := m.SweepOrphans(time.Hour)
	if deleted != 1 {
		t.Errorf("SweepOrphans = %d, want 1", deleted)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale orphan still exists")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("fresh file removed: %v", err)
	}
}
