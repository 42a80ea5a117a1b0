package service

import (
	"sync"
	"time"

	"anydl/internal/model"
	"anydl/pkg/logger"

	"go.uber.org/zap"
)

type quotaUsage struct {
	usedBytes int64
	resetAt   time.Time
}

// QuotaService tracks download volume per IP against a daily limit.
type QuotaService struct {
	cfg   *model.QuotaConfig
	mu    sync.Mutex
	usage map[string]*quotaUsage
}

// NewQuotaService creates a quota service.
func NewQuotaService(cfg *model.QuotaConfig) *QuotaService {
	return &QuotaService{
		cfg:   cfg,
		usage: make(map[string]*quotaUsage),
	}
}

// Allow reports whether the IP still has quota, and how many bytes remain.
func (s *QuotaService) Allow(ip string) (bool, int64) {
	if !s.cfg.Enabled {
		return true, s.limitBytes()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.entry(ip)
	remaining := s.limitBytes() - u.usedBytes
	if remaining <= 0 {
		logger.Logger.Warn("Daily quota exhausted", zap.String("ip", ip))
		return false, 0
	}
	return true, remaining
}

// Add records downloaded bytes against the IP's quota.
func (s *QuotaService) Add(ip string, bytes int64) {
	if !s.cfg.Enabled || bytes <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.entry(ip)
	u.usedBytes += bytes
	logger.Logger.Debug("Quota usage updated",
		zap.String("ip", ip),
		zap.Int64("used_bytes", u.usedBytes),
		zap.Int64("limit_bytes", s.limitBytes()))
}

// entry returns the live usage record for an IP, resetting it when its daily
// window has passed. Caller holds the lock.
func (s *QuotaService) entry(ip string) *quotaUsage {
	now := time.Now()
	u, ok := s.usage[ip]
	if !ok || now.After(u.resetAt) {
		u = &quotaUsage{resetAt: s.nextReset(now)}
		s.usage[ip] = u
	}
	return u
}

func (s *QuotaService) limitBytes() int64 {
	return s.cfg.DailyLimitMB * 1024 * 1024
}

// nextReset is the next occurrence of the configured reset hour.
func (s *QuotaService) nextReset(now time.Time) time.Time {
	reset := time.Date(now.Year(), now.Month(), now.Day(), s.cfg.ResetHour, 0, 0, 0, now.Location())
	if !reset.After(now) {
		reset = reset.AddDate(0, 0, 1)
	}
	return reset
}
