package validator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/snow-ghost/validator/analyzers"
	"github.com/snow-ghost/validator/core"
	"github.com/snow-ghost/validator/pkg/cache"
	"github.com/snow-ghost/validator/pkg/events"
	"github.com/snow-ghost/validator/pkg/ledger"
	"github.com/snow-ghost/validator/pkg/limiter"
	"github.com/snow-ghost/validator/pkg/llm"
	"github.com/snow-ghost/validator/pkg/observability"
	"github.com/snow-ghost/validator/pkg/registry"
	"github.com/snow-ghost/validator/pkg/storage"
	"github.com/snow-ghost/validator/pkg/tokens"
)

// Service is the wired set of components behind the binaries.
type Service struct {
	Config    *Config
	Validator *Validator
	Pipeline  *Pipeline
	Storage   *storage.Client
	Ledger    *ledger.SQLLedger
	Obs       *observability.Manager

	cache *cache.CacheManager
}

// NewService builds every component described by config.
func NewService(config *Config, obs *observability.Manager) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if obs == nil {
		obs = observability.NewNop()
	}

	thresholds, err := registry.NewLoader(config.ThresholdsFile).Load()
	if err != nil {
		return nil, fmt.Errorf("load thresholds: %w", err)
	}

	pm := limiter.NewProtectionManager()
	obs.Instrument(pm, limiter.StoragePolicy(), limiter.OllamaPolicy(), limiter.OpenAIPolicy())

	svc := &Service{Config: config, Obs: obs}

	set := analyzers.Default()
	completer, err := svc.newCompleter(pm)
	if err != nil {
		return nil, err
	}
	if completer != nil {
		enc := tokens.New(tokens.DefaultEncoding)
		set = analyzers.WithSemantic(set, completer, analyzers.WithEncoder(enc, tokens.DefaultBudget().Available()))
	}

	svc.Validator = New(set, thresholds, WithTimeout(config.AnalyzerTimeout), WithObservability(obs))
	svc.Storage = storage.NewClient(config.StorageAPIURL, storage.WithProtection(pm))

	var recorder core.DecisionRecorder
	if config.LedgerDriver != LedgerOff {
		svc.Ledger, err = ledger.Open(config.LedgerDriver, config.LedgerDSN, int64(config.StakeAmount))
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("open ledger: %w", err)
		}
		recorder = svc.Ledger
	}
	svc.Pipeline = NewPipeline(svc.Storage, svc.Validator, svc.Storage, recorder)

	slog.Info("validator service configured",
		"llm_mode", config.LLMMode, "ledger", config.LedgerDriver, "criteria", len(thresholds.Criteria()))
	return svc, nil
}

func (s *Service) newCompleter(pm *limiter.ProtectionManager) (llm.Completer, error) {
	var (
		inner llm.Completer
		model string
	)
	opts := []llm.Option{llm.WithProtection(pm), llm.WithRecorder(s.Obs)}
	switch s.Config.LLMMode {
	case LLMModeOff:
		return nil, nil
	case LLMModeOllama:
		inner, model = llm.NewOllamaClient(s.Config.OllamaAPIURL, s.Config.OllamaModel, opts...), s.Config.OllamaModel
	case LLMModeOpenAI:
		inner, model = llm.NewOpenAIClient(s.Config.OpenAIBaseURL, s.Config.OpenAIAPIKey, s.Config.OpenAIModel, opts...), s.Config.OpenAIModel
	}

	cacheConfig := cache.DefaultCacheConfig()
	if s.Config.LLMCacheSize > 0 {
		cacheConfig.MaxSize = s.Config.LLMCacheSize
	}
	if s.Config.LLMCacheTTL > 0 {
		cacheConfig.DefaultTTL = s.Config.LLMCacheTTL
	}
	cm, err := cache.NewCacheManager(cacheConfig)
	if err != nil {
		return nil, fmt.Errorf("create completion cache: %w", err)
	}
	s.cache = cm
	return llm.NewCachedCompleter(inner, model, cm, s.Obs), nil
}

// Consumer returns a broker consumer feeding the pipeline.
func (s *Service) Consumer() *events.Consumer {
	c := s.Config
	cfg := events.DefaultConfig()
	cfg.URL = events.URL(c.RabbitMQHost, c.RabbitMQPort, c.RabbitMQUser, c.RabbitMQPass)
	cfg.OnSettle = func(o events.Outcome) { s.Obs.RecordEvent(string(o)) }

	return events.NewConsumer(cfg, EventHandler(s.Pipeline))
}

// EventHandler adapts p to the consumer. A deleted practice or a
// practice without any scorable criterion is reported as permanent.
func EventHandler(p *Pipeline) events.Handler {
	return func(ctx context.Context, id string) error {
		_, err := p.Handle(ctx, id)
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, core.ErrNoCriteria) {
			return fmt.Errorf("%w: %w", events.ErrPermanent, err)
		}
		return err
	}
}

// Close releases the cache and the ledger.
func (s *Service) Close() error {
	var errs []error
	if s.cache != nil {
		s.cache.Close()
	}
	if s.Ledger != nil {
		errs = append(errs, s.Ledger.Close())
	}
	return errors.Join(errs...)
}
