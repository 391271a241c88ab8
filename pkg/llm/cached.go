package llm

import (
	"context"

	"github.com/snow-ghost/validator/pkg/cache"
)

// CachedCompleter memoizes completions of an inner Completer by model and
// prompt, and collapses concurrent identical prompts into one call.
type CachedCompleter struct {
	inner    Completer
	model    string
	cache    *cache.CacheManager
	recorder Recorder
}

// NewCachedCompleter wraps inner. model is part of the cache key.
func NewCachedCompleter(inner Completer, model string, cm *cache.CacheManager, r Recorder) *CachedCompleter {
	if r == nil {
		r = nopRecorder{}
	}
	return &CachedCompleter{inner: inner, model: model, cache: cm, recorder: r}
}

func (c *CachedCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	out, hit, err := c.cache.ExecuteWithCache(ctx, cache.CacheRequest{Model: c.model, Prompt: prompt}, func() (string, error) {
		return c.inner.Complete(ctx, prompt)
	})
	if err != nil {
		return "", err
	}
	c.recorder.ObserveLLMCache(hit)
	return out, nil
}
