package limiter

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter manages one token bucket per downstream service
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
	}
}

// GetLimiter returns or creates the limiter for policy.Service
func (rl *RateLimiter) GetLimiter(policy Policy) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, exists := rl.limiters[policy.Service]; exists {
		return limiter
	}

	limiter := rate.NewLimiter(rate.Limit(policy.limit()/60.0), policy.burst())
	rl.limiters[policy.Service] = limiter
	return limiter
}

// Wait blocks until the service's limiter allows a request
func (rl *RateLimiter) Wait(ctx context.Context, policy Policy) error {
	if err := rl.GetLimiter(policy).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}
	return nil
}

// Allow checks if the request is allowed without waiting
func (rl *RateLimiter) Allow(policy Policy) bool {
	return rl.GetLimiter(policy).Allow()
}

// GetStats returns rate limiter statistics for a service
func (rl *RateLimiter) GetStats(policy Policy) map[string]interface{} {
	limiter := rl.GetLimiter(policy)

	return map[string]interface{}{
		"service":         policy.Service,
		"limit":           limiter.Limit(),
		"burst":           limiter.Burst(),
		"tokens":          limiter.Tokens(),
		"rate_per_minute": policy.limit(),
	}
}

// Reset drops the limiter for a service
func (rl *RateLimiter) Reset(service string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	delete(rl.limiters, service)
}

// ResetAll drops all limiters
func (rl *RateLimiter) ResetAll() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.limiters = make(map[string]*rate.Limiter)
}
