package ratelimiter

import (
	"sync"
	"time"

	"github.com/SeakMengs/InstaPilot/internal/config"
	"github.com/SeakMengs/InstaPilot/internal/util"
	"go.uber.org/zap"
)

func NewRateLimiter(cfg config.RateLimiterConfig, logger *zap.SugaredLogger) *FixedWindowRateLimiter {
	// For unit test
	if logger == nil {
		logger = util.NewLogger()
	}

	return NewFixedWindowLimiter(cfg, logger)
}

type FixedWindowRateLimiter struct {
	sync.RWMutex
	clients map[string]int
	cfg     config.RateLimiterConfig
	logger  *zap.SugaredLogger
}

func NewFixedWindowLimiter(cfg config.RateLimiterConfig, logger *zap.SugaredLogger) *FixedWindowRateLimiter {
	return &FixedWindowRateLimiter{
		clients: make(map[string]int),
		cfg:     cfg,
		logger:  logger,
	}
}

func (rl *FixedWindowRateLimiter) Enabled() bool {
	return rl.cfg.Enabled
}

// Allow reports whether the client identified by ip may proceed, and if not,
// how long until the current window resets.
func (rl *FixedWindowRateLimiter) Allow(ip string) (bool, time.Duration) {
	rl.RLock()
	count, exists := rl.clients[ip]
	rl.RUnlock()

	if !exists || count < rl.cfg.RequestsPerTimeFrame {
		rl.Lock()
		if !exists {
			go rl.resetCount(ip)
		}

		rl.clients[ip]++
		rl.Unlock()
		return true, 0
	}

	return false, rl.cfg.TimeFrame
}

func (rl *FixedWindowRateLimiter) resetCount(ip string) {
	time.Sleep(rl.cfg.TimeFrame)
	rl.Lock()
	delete(rl.clients, ip)
	rl.Unlock()
}
