// Package validator runs the analyzers over a practice, aggregates their
// results through the quality wheel and wires the service around it.
package validator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/snow-ghost/validator/analyzers"
	"github.com/snow-ghost/validator/core"
	"github.com/snow-ghost/validator/pkg/observability"
	"golang.org/x/sync/errgroup"
)

// DefaultAnalyzerTimeout bounds a single analyzer run.
const DefaultAnalyzerTimeout = 240 * time.Second

// Validator evaluates practices. It holds no per-call state and is safe
// for concurrent use.
type Validator struct {
	analyzers map[core.CriterionID]core.Analyzer
	wheel     *core.QualityWheel
	timeout   time.Duration
	obs       *observability.Manager
}

// Option configures a Validator.
type Option func(*Validator)

// WithTimeout bounds each analyzer run. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(v *Validator) { v.timeout = d }
}

// WithObservability reports spans, metrics and logs to m.
func WithObservability(m *observability.Manager) Option {
	return func(v *Validator) { v.obs = m }
}

// New creates a validator running set against thresholds.
func New(set map[core.CriterionID]core.Analyzer, thresholds *core.ThresholdRegistry, opts ...Option) *Validator {
	v := &Validator{
		analyzers: set,
		wheel:     core.NewQualityWheel(thresholds),
		timeout:   DefaultAnalyzerTimeout,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.obs == nil {
		v.obs = observability.NewNop()
	}
	return v
}

// Validate runs every analyzer concurrently, aggregates the results and
// returns the report. Failing analyzers are replaced by neutral results,
// so the only error is core.ErrNoCriteria when no analyzer is configured.
func (v *Validator) Validate(ctx context.Context, practice core.Practice) (core.ValidationReport, error) {
	start := time.Now()
	ctx, span := v.obs.StartValidation(ctx, practice.ID)

	results := v.analyze(ctx, practice)
	eval, err := v.wheel.Evaluate(results)
	if err != nil {
		report := core.ValidationReport{PracticeID: practice.ID}
		v.obs.FinishValidation(ctx, span, report, time.Since(start), err)
		return report, err
	}

	report := core.ValidationReport{
		PracticeID:       practice.ID,
		PracticeType:     string(analyzers.Classify(practice)),
		Scores:           results,
		ValidScores:      eval.ValidScores,
		InvalidScores:    eval.InvalidScores,
		FinalScore:       eval.FinalScore,
		ReliabilityScore: core.ReliabilityScore(eval),
		Recommendations:  eval.Recommendations,
		Decision:         core.Decide(eval),
	}
	v.obs.FinishValidation(ctx, span, report, time.Since(start), nil)
	return report, nil
}

// Evaluate aggregates precomputed analyzer results without running analyzers.
func (v *Validator) Evaluate(results map[core.CriterionID]core.CriterionResult) (core.Evaluation, core.Decision, error) {
	eval, err := v.wheel.Evaluate(results)
	if err != nil {
		return eval, "", err
	}
	return eval, core.Decide(eval), nil
}

func (v *Validator) analyze(ctx context.Context, practice core.Practice) map[core.CriterionID]core.CriterionResult {
	var (
		mu      sync.Mutex
		results = make(map[core.CriterionID]core.CriterionResult, len(v.analyzers))
		g       errgroup.Group
	)
	for id, a := range v.analyzers {
		g.Go(func() error {
			result := v.run(ctx, id, a, practice)
			mu.Lock()
			results[id] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

type outcome struct {
	result core.CriterionResult
	err    error
}

// run executes one analyzer under the per-analyzer timeout. A panic, a
// deadline or a cancelled context yields the neutral result.
func (v *Validator) run(ctx context.Context, id core.CriterionID, a core.Analyzer, practice core.Practice) core.CriterionResult {
	start := time.Now()
	ctx, span := v.obs.StartAnalyzer(ctx, id)

	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("analyzer %s panicked: %v", id, r)}
			}
		}()
		done <- outcome{result: a.Analyze(ctx, practice)}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-ctx.Done():
		out.err = fmt.Errorf("analyzer %s: %w", id, ctx.Err())
	}

	v.obs.FinishAnalyzer(ctx, span, id, time.Since(start), out.err)
	if out.err != nil {
		return core.NeutralResult(v.wheel.Thresholds().Metrics(id), out.err.Error())
	}
	return out.result
}
