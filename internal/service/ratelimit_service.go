package service

import (
	"sync"
	"time"

	"anydl/internal/model"
	"anydl/pkg/logger"

	"go.uber.org/zap"
)

type rateWindow struct {
	count   int
	resetAt time.Time
}

// RateLimitService caps requests per IP per minute.
type RateLimitService struct {
	cfg     *model.RateLimitConfig
	mu      sync.Mutex
	windows map[string]*rateWindow
	quit    chan struct{}
	once    sync.Once
}

// NewRateLimitService creates a rate limit service and, when enabled, starts
// its cleanup goroutine.
func NewRateLimitService(cfg *model.RateLimitConfig) *RateLimitService {
	s := &RateLimitService{
		cfg:     cfg,
		windows: make(map[string]*rateWindow),
		quit:    make(chan struct{}),
	}
	if cfg.Enabled {
		go s.run()
	}
	return s
}

// Allow reports whether the IP may make another request in the current
// minute window.
func (s *RateLimitService) Allow(ip string) bool {
	if !s.cfg.Enabled {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	w, ok := s.windows[ip]
	if !ok || now.After(w.resetAt) {
		s.windows[ip] = &rateWindow{count: 1, resetAt: now.Add(time.Minute)}
		return true
	}

	w.count++
	if w.count > s.cfg.RequestsPerMinute {
		logger.Logger.Warn("Rate limit exceeded",
			zap.String("ip", ip),
			zap.Int("requests", w.count),
			zap.Int("limit", s.cfg.RequestsPerMinute))
		return false
	}
	return true
}

// Remaining returns how many requests the IP has left in its window, or -1
// when limiting is disabled.
func (s *RateLimitService) Remaining(ip string) int {
	if !s.cfg.Enabled {
		return -1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[ip]
	if !ok || time.Now().After(w.resetAt) {
		return s.cfg.RequestsPerMinute
	}
	if left := s.cfg.RequestsPerMinute - w.count; left > 0 {
		return left
	}
	return 0
}

func (s *RateLimitService) run() {
	ticker := time.NewTicker(time.Duration(s.cfg.CleanupInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.quit:
			return
		case <-ticker.C:
			s.dropStale()
		}
	}
}

// dropStale discards windows whose reset passed more than an hour ago.
func (s *RateLimitService) dropStale() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-time.Hour)
	for ip, w := range s.windows {
		if w.resetAt.Before(cutoff) {
			delete(s.windows, ip)
		}
	}
}

// Stop terminates the cleanup goroutine.
func (s *RateLimitService) Stop() {
	s.once.Do(func() { close(s.quit) })
}
