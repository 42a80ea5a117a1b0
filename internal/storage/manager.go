package storage

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"anydl/internal/model"
	"anydl/pkg/logger"

	"go.uber.org/zap"
)

// trackedFile is a downloaded file with an expiry.
type trackedFile struct {
	Path      string
	ExpiresAt time.Time
}

// Manager owns the download directory: it tracks files produced by the remux
// fallback and removes them once their TTL passes. Files left behind by
// earlier runs are swept by modification time.
type Manager struct {
	cfg   *model.StorageConfig
	mu    sync.RWMutex
	files map[string]trackedFile
	quit  chan struct{}
	once  sync.Once
}

// NewManager creates a storage manager.
func NewManager(cfg *model.StorageConfig) *Manager {
	return &Manager{
		cfg:   cfg,
		files: make(map[string]trackedFile),
		quit:  make(chan struct{}),
	}
}

// EnsureDownloadDir creates the download directory if needed.
func (m *Manager) EnsureDownloadDir() error {
	return os.MkdirAll(m.cfg.DownloadDir, 0o755)
}

// DownloadPath returns the path under the download dir for a filename.
func (m *Manager) DownloadPath(filename string) string {
	return filepath.Join(m.cfg.DownloadDir, filename)
}

// ValidateFileSize checks a size against the configured maximum.
func (m *Manager) ValidateFileSize(sizeBytes int64) bool {
	return sizeBytes <= int64(m.cfg.MaxVideoSizeMB)*1024*1024
}

// MaxSizeMB returns the configured size limit.
func (m *Manager) MaxSizeMB() int {
	return m.cfg.MaxVideoSizeMB
}

// FileTTL returns how long downloaded files are kept.
func (m *Manager) FileTTL() time.Duration {
	return time.Duration(m.cfg.FileTTLSeconds) * time.Second
}

// Track registers a downloaded file for TTL cleanup.
func (m *Manager) Track(id, path string) {
	m.mu.Lock()
	m.files[id] = trackedFile{Path: path, ExpiresAt: time.Now().Add(m.FileTTL())}
	m.mu.Unlock()

	logger.Logger.Debug("File tracked", zap.String("id", id), zap.String("path", path))
}

// Start launches the periodic cleanup goroutine.
func (m *Manager) Start() {
	go m.run()
}

// Stop terminates the cleanup goroutine.
func (m *Manager) Stop() {
	m.once.Do(func() { close(m.quit) })
}

func (m *Manager) run() {
	ticker := time.NewTicker(time.Duration(m.cfg.CleanupInterval) * time.Second)
	defer ticker.Stop()

	logger.Logger.Info("Storage cleanup started",
		zap.Int("interval_seconds", m.cfg.CleanupInterval),
		zap.Int("ttl_seconds", m.cfg.FileTTLSeconds))

	for {
		select {
		case <-m.quit:
			logger.Logger.Info("Storage cleanup stopped")
			return
		case <-ticker.C:
			m.Cleanup()
		}
	}
}

// Cleanup removes expired tracked files and sweeps orphans. Returns the
// number of files deleted.
func (m *Manager) Cleanup() int {
	deleted := m.cleanupTracked()
	deleted += m.SweepOrphans(m.FileTTL())
	return deleted
}

func (m *Manager) cleanupTracked() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	deleted := 0
	for id, f := range m.files {
		if now.Before(f.ExpiresAt) {
			continue
		}
		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			logger.Logger.Error("Failed to remove file", zap.String("path", f.Path), zap.Error(err))
		} else {
			deleted++
		}
		delete(m.files, id)
	}

	if deleted > 0 {
		logger.Logger.Info("Expired files removed", zap.Int("count", deleted), zap.Int("tracked", len(m.files)))
	}
	return deleted
}

// SweepOrphans deletes any file in the download dir older than maxAge,
// whether or not it is tracked. Covers files left over from previous runs.
func (m *Manager) SweepOrphans(maxAge time.Duration) int {
	entries, err := os.ReadDir(m.cfg.DownloadDir)
	if err != nil {
		return 0
	}

	cutoff := time.Now().Add(-maxAge)
	deleted := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(m.cfg.DownloadDir, e.Name())
		if err := os.Remove(path); err == nil {
			deleted++
			logger.Logger.Info("Orphan file removed", zap.String("path", path))
		}
	}
	return deleted
}

// TrackedCount returns the number of files currently tracked.
func (m *Manager) TrackedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}
