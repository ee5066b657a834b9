// File: internal/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Config holds rate limiting configuration
type Config struct {
	WindowSize    time.Duration // Time window for rate limiting
	MaxAttempts   int           // Maximum attempts per window
	CleanupPeriod time.Duration // How often to clean up old entries
	BanDuration   time.Duration // How long to ban after exceeding limit
}

// DefaultAuthConfig returns the limits used for login and registration.
func DefaultAuthConfig() *Config {
	return &Config{
		WindowSize:    15 * time.Minute,
		MaxAttempts:   5,
		CleanupPeriod: 30 * time.Minute,
		BanDuration:   30 * time.Minute,
	}
}

// Limiter decides whether an identifier may make another attempt.
type Limiter interface {
	Allow(identifier string) (bool, *RateLimitInfo)
	// RecordSuccess forgets the identifier's attempts.
	RecordSuccess(identifier string)
}

// RateLimitInfo contains information about rate limit status
type RateLimitInfo struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
	Banned     bool
}

type attemptRecord struct {
	count     int
	firstSeen time.Time
	bannedAt  *time.Time
}

// MemoryRateLimiter implements in-memory rate limiting. Exceeding the limit
// bans the identifier for BanDuration.
type MemoryRateLimiter struct {
	config   *Config
	attempts map[string]*attemptRecord
	mu       sync.Mutex
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewMemoryRateLimiter(config *Config) *MemoryRateLimiter {
	if config == nil {
		config = DefaultAuthConfig()
	}
	limiter := &MemoryRateLimiter{
		config:   config,
		attempts: make(map[string]*attemptRecord),
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
	if config.CleanupPeriod > 0 {
		go limiter.cleanupLoop()
	}
	return limiter
}

func (rl *MemoryRateLimiter) Allow(identifier string) (bool, *RateLimitInfo) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	limit := rl.config.MaxAttempts
	record, exists := rl.attempts[identifier]

	if exists && record.bannedAt != nil {
		if banLeft := rl.config.BanDuration - now.Sub(*record.bannedAt); banLeft > 0 {
			return false, &RateLimitInfo{
				Limit:      limit,
				ResetTime:  record.bannedAt.Add(rl.config.BanDuration),
				RetryAfter: banLeft,
				Banned:     true,
			}
		}
	}

	if !exists || now.Sub(record.firstSeen) > rl.config.WindowSize || record.bannedAt != nil {
		record = &attemptRecord{firstSeen: now}
		rl.attempts[identifier] = record
	}
	record.count++

	if record.count > limit {
		banTime := now
		record.bannedAt = &banTime
		return false, &RateLimitInfo{
			Limit:      limit,
			ResetTime:  now.Add(rl.config.BanDuration),
			RetryAfter: rl.config.BanDuration,
			Banned:     true,
		}
	}

	return true, &RateLimitInfo{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - record.count,
		ResetTime: record.firstSeen.Add(rl.config.WindowSize),
	}
}

func (rl *MemoryRateLimiter) RecordSuccess(identifier string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.attempts, identifier)
}

func (rl *MemoryRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *MemoryRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for identifier, record := range rl.attempts {
		if record.bannedAt != nil {
			if now.Sub(*record.bannedAt) > rl.config.BanDuration {
				delete(rl.attempts, identifier)
			}
			continue
		}
		if now.Sub(record.firstSeen) > rl.config.WindowSize {
			delete(rl.attempts, identifier)
		}
	}
}

// Close stops the cleanup goroutine
func (rl *MemoryRateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// GetClientIP extracts the real client IP from request
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
