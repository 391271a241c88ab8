package limiter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// CircuitBreakerConfig holds circuit breaker configuration
type CircuitBreakerConfig struct {
	Name        string                             `json:"name"`
	MaxRequests uint32                             `json:"max_requests"`
	Interval    time.Duration                      `json:"interval"`
	Timeout     time.Duration                      `json:"timeout"`
	ReadyToTrip func(counts gobreaker.Counts) bool `json:"-"`
}

// DefaultCircuitBreakerConfig returns a default circuit breaker configuration
func DefaultCircuitBreakerConfig(name string) *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// open once at least half of five or more requests failed
			return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
	}
}

// StateChangeFunc observes circuit breaker transitions.
type StateChangeFunc func(service string, from, to gobreaker.State)

// CircuitBreakerManager manages one circuit breaker per downstream service
type CircuitBreakerManager struct {
	breakers      map[string]*gobreaker.CircuitBreaker
	configs       map[string]*CircuitBreakerConfig
	onStateChange StateChangeFunc
	mu            sync.Mutex
}

// NewCircuitBreakerManager creates a new circuit breaker manager
func NewCircuitBreakerManager() *CircuitBreakerManager {
	return &CircuitBreakerManager{
		breakers: make(map[string]*gobreaker.CircuitBreaker),
		configs:  make(map[string]*CircuitBreakerConfig),
	}
}

// OnStateChange registers fn for breakers created after the call.
func (cbm *CircuitBreakerManager) OnStateChange(fn StateChangeFunc) {
	cbm.mu.Lock()
	defer cbm.mu.Unlock()
	cbm.onStateChange = fn
}

// GetBreaker returns or creates the circuit breaker for policy.Service
func (cbm *CircuitBreakerManager) GetBreaker(policy Policy) *gobreaker.CircuitBreaker {
	cbm.mu.Lock()
	defer cbm.mu.Unlock()

	if breaker, exists := cbm.breakers[policy.Service]; exists {
		return breaker
	}

	cbConfig := policy.Breaker
	if cbConfig == nil {
		cbConfig = DefaultCircuitBreakerConfig(policy.Service)
	}

	service := policy.Service
	hook := cbm.onStateChange
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cbConfig.Name,
		MaxRequests: cbConfig.MaxRequests,
		Interval:    cbConfig.Interval,
		Timeout:     cbConfig.Timeout,
		ReadyToTrip: cbConfig.ReadyToTrip,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "service", service, "from", from.String(), "to", to.String())
			if hook != nil {
				hook(service, from, to)
			}
		},
	})

	cbm.breakers[policy.Service] = breaker
	cbm.configs[policy.Service] = cbConfig
	return breaker
}

// Execute executes a function through the service's circuit breaker
func (cbm *CircuitBreakerManager) Execute(_ context.Context, policy Policy, fn func() (interface{}, error)) (interface{}, error) {
	result, err := cbm.GetBreaker(policy).Execute(fn)
	if err != nil {
		return nil, fmt.Errorf("circuit breaker execution failed: %w", err)
	}
	return result, nil
}

// GetState returns the current state of a circuit breaker
func (cbm *CircuitBreakerManager) GetState(policy Policy) gobreaker.State {
	return cbm.GetBreaker(policy).State()
}

// GetStats returns circuit breaker statistics for a service
func (cbm *CircuitBreakerManager) GetStats(policy Policy) map[string]interface{} {
	breaker := cbm.GetBreaker(policy)
	counts := breaker.Counts()

	return map[string]interface{}{
		"service":              policy.Service,
		"state":                breaker.State().String(),
		"requests":             counts.Requests,
		"total_success":        counts.TotalSuccesses,
		"total_failures":       counts.TotalFailures,
		"consecutive_success":  counts.ConsecutiveSuccesses,
		"consecutive_failures": counts.ConsecutiveFailures,
	}
}

// Reset drops the circuit breaker for a service
func (cbm *CircuitBreakerManager) Reset(service string) {
	cbm.mu.Lock()
	defer cbm.mu.Unlock()

	delete(cbm.breakers, service)
	delete(cbm.configs, service)
}

// ResetAll drops all circuit breakers
func (cbm *CircuitBreakerManager) ResetAll() {
	cbm.mu.Lock()
	defer cbm.mu.Unlock()

	cbm.breakers = make(map[string]*gobreaker.CircuitBreaker)
	cbm.configs = make(map[string]*CircuitBreakerConfig)
}

// IsOpen checks if the circuit breaker is open for a service
func (cbm *CircuitBreakerManager) IsOpen(policy Policy) bool {
	return cbm.GetState(policy) == gobreaker.StateOpen
}

// IsClosed checks if the circuit breaker is closed for a service
func (cbm *CircuitBreakerManager) IsClosed(policy Policy) bool {
	return cbm.GetState(policy) == gobreaker.StateClosed
}
