package limiter

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownService is returned for a service without a registered Policy.
var ErrUnknownService = errors.New("no protection policy for service")

// ErrCircuitOpen is returned without calling the service while its breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ProtectionManager integrates rate limiting, retries, and circuit breaker
type ProtectionManager struct {
	rateLimiter    *RateLimiter
	circuitBreaker *CircuitBreakerManager
	policies       map[string]Policy
	mu             sync.RWMutex
}

// NewProtectionManager creates a protection manager for the given policies
func NewProtectionManager(policies ...Policy) *ProtectionManager {
	pm := &ProtectionManager{
		rateLimiter:    NewRateLimiter(),
		circuitBreaker: NewCircuitBreakerManager(),
		policies:       make(map[string]Policy),
	}
	for _, p := range policies {
		pm.Register(p)
	}
	return pm
}

// Register adds or replaces the policy for p.Service
func (pm *ProtectionManager) Register(p Policy) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if p.Retry == nil {
		p.Retry = DefaultRetryConfig()
	}
	pm.policies[p.Service] = p
	pm.rateLimiter.Reset(p.Service)
	pm.circuitBreaker.Reset(p.Service)
}

// Breakers exposes the circuit breaker manager for state change hooks
func (pm *ProtectionManager) Breakers() *CircuitBreakerManager {
	return pm.circuitBreaker
}

func (pm *ProtectionManager) policy(service string) (Policy, error) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	p, ok := pm.policies[service]
	if !ok {
		return Policy{}, fmt.Errorf("%w: %s", ErrUnknownService, service)
	}
	return p, nil
}

// ExecuteWithProtection executes a function with all protection mechanisms
func (pm *ProtectionManager) ExecuteWithProtection(
	ctx context.Context,
	service string,
	fn func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	p, err := pm.policy(service)
	if err != nil {
		return nil, err
	}

	if pm.circuitBreaker.IsOpen(p) {
		return nil, fmt.Errorf("%w for service %s", ErrCircuitOpen, service)
	}

	if err := pm.rateLimiter.Wait(ctx, p); err != nil {
		return nil, fmt.Errorf("rate limiting failed: %w", err)
	}

	retryManager := NewRetryManager(p.Retry)
	result, err := pm.circuitBreaker.Execute(ctx, p, func() (interface{}, error) {
		return retryManager.Execute(ctx, fn)
	})
	if err != nil {
		return nil, fmt.Errorf("protected execution failed: %w", err)
	}

	return result, nil
}

// Do runs fn under the protection of service and returns its typed result.
func Do[T any](ctx context.Context, pm *ProtectionManager, service string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	result, err := pm.ExecuteWithProtection(ctx, service, func(ctx context.Context) (interface{}, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	v, ok := result.(T)
	if !ok {
		return zero, nil
	}
	return v, nil
}

// GetStats returns statistics for all protection mechanisms of a service
func (pm *ProtectionManager) GetStats(service string) map[string]interface{} {
	p, err := pm.policy(service)
	if err != nil {
		return map[string]interface{}{"error": err.Error()}
	}

	return map[string]interface{}{
		"service":         service,
		"rate_limiter":    pm.rateLimiter.GetStats(p),
		"circuit_breaker": pm.circuitBreaker.GetStats(p),
		"retry_config": map[string]interface{}{
			"max_retries":      p.Retry.MaxRetries,
			"base_delay":       p.Retry.BaseDelay.String(),
			"max_delay":        p.Retry.MaxDelay.String(),
			"backoff_factor":   p.Retry.BackoffFactor,
			"jitter":           p.Retry.Jitter,
			"retryable_errors": p.Retry.RetryableErrors,
		},
	}
}

// IsAvailable reports whether the service's breaker is not open
func (pm *ProtectionManager) IsAvailable(service string) bool {
	p, err := pm.policy(service)
	if err != nil {
		return false
	}
	return !pm.circuitBreaker.IsOpen(p)
}

// ResetAll resets all protection mechanisms
func (pm *ProtectionManager) ResetAll() {
	pm.rateLimiter.ResetAll()
	pm.circuitBreaker.ResetAll()
}
