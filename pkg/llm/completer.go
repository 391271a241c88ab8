// Package llm provides the language model backends used for semantic scoring.
package llm

import (
	"context"
	"net/http"
	"time"

	"github.com/snow-ghost/validator/pkg/limiter"
)

// Completer produces a text completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Recorder receives request and cache observations.
type Recorder interface {
	ObserveLLMRequest(backend string, duration time.Duration, err error)
	ObserveLLMCache(hit bool)
}

type nopRecorder struct{}

func (nopRecorder) ObserveLLMRequest(string, time.Duration, error) {}
func (nopRecorder) ObserveLLMCache(bool)                           {}

// Generation options shared by both backends.
const (
	Temperature   = 0.5
	TopK          = 20
	TopP          = 0.7
	MaxTokens     = 256
	ContextWindow = 2048
	StopSequence  = "</response>"
)

type options struct {
	httpClient *http.Client
	protection *limiter.ProtectionManager
	recorder   Recorder
}

// Option configures a client.
type Option func(*options)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithProtection routes calls through pm. The manager must have a policy
// registered for the client's service name.
func WithProtection(pm *limiter.ProtectionManager) Option {
	return func(o *options) { o.protection = pm }
}

// WithRecorder sets the observer for requests and cache lookups.
func WithRecorder(r Recorder) Option {
	return func(o *options) { o.recorder = r }
}

func buildOptions(defaultPolicy limiter.Policy, opts []Option) options {
	o := options{
		httpClient: &http.Client{Timeout: 180 * time.Second},
		recorder:   nopRecorder{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.protection == nil {
		o.protection = limiter.NewProtectionManager(defaultPolicy)
	}
	return o
}

func observe(r Recorder, backend string, start time.Time, err error) {
	r.ObserveLLMRequest(backend, time.Since(start), err)
}
