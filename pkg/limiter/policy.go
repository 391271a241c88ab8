package limiter

import "time"

// Policy describes how calls to one downstream service are protected.
type Policy struct {
	Service       string
	RatePerMinute float64
	Burst         int
	Retry         *RetryConfig
	Breaker       *CircuitBreakerConfig
}

// StoragePolicy protects calls to the practice storage API.
func StoragePolicy() Policy {
	retry := DefaultRetryConfig()
	return Policy{
		Service:       "storage",
		RatePerMinute: 600,
		Retry:         retry,
	}
}

// OllamaPolicy protects calls to a local Ollama server: five attempts with
// exponential backoff between 4s and 20s.
func OllamaPolicy() Policy {
	retry := DefaultRetryConfig()
	retry.MaxRetries = 4
	retry.BaseDelay = 4 * time.Second
	retry.MaxDelay = 20 * time.Second
	retry.RetryTransport = true
	return Policy{
		Service:       "ollama",
		RatePerMinute: 60,
		Burst:         2,
		Retry:         retry,
	}
}

// OpenAIPolicy protects calls to an OpenAI compatible endpoint.
func OpenAIPolicy() Policy {
	retry := DefaultRetryConfig()
	retry.RetryTransport = true
	return Policy{
		Service:       "openai",
		RatePerMinute: 500,
		Retry:         retry,
	}
}

func (p Policy) limit() float64 {
	if p.RatePerMinute > 0 {
		return p.RatePerMinute
	}
	return 1000.0
}

func (p Policy) burst() int {
	if p.Burst > 0 {
		return p.Burst
	}
	return max(1, int(p.limit()/10.0))
}
