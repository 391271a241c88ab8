package validator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/snow-ghost/validator/core"
)

// PracticeLister enumerates stored practices.
type PracticeLister interface {
	ListPracticeIDs(ctx context.Context) ([]string, error)
}

// Pipeline fetches a practice, validates it, stores the report and
// records the decision.
type Pipeline struct {
	source    core.PracticeSource
	validator *Validator
	sink      core.ReportSink
	ledger    core.DecisionRecorder
}

// NewPipeline creates a pipeline. ledger may be nil.
func NewPipeline(source core.PracticeSource, v *Validator, sink core.ReportSink, ledger core.DecisionRecorder) *Pipeline {
	return &Pipeline{source: source, validator: v, sink: sink, ledger: ledger}
}

// Handle validates the stored practice id end to end.
func (p *Pipeline) Handle(ctx context.Context, id string) (core.ValidationReport, error) {
	slog.InfoContext(ctx, "validating practice", "practice_id", id)

	practice, err := p.source.GetPractice(ctx, id)
	if err != nil {
		return core.ValidationReport{}, fmt.Errorf("fetch practice: %w", err)
	}
	if practice.ID == "" {
		practice.ID = id
	}

	report, err := p.validator.Validate(ctx, practice)
	if err != nil {
		return report, fmt.Errorf("validate practice %s: %w", id, err)
	}

	if err := p.sink.UpsertValidation(ctx, id, report); err != nil {
		return report, fmt.Errorf("store report: %w", err)
	}

	if p.ledger != nil {
		if err := p.ledger.Record(ctx, report); err != nil {
			return report, fmt.Errorf("record decision: %w", err)
		}
	}

	slog.InfoContext(ctx, "practice validated", "practice_id", id, "decision", report.Decision)
	return report, nil
}

// Failure is one practice that could not be revalidated.
type Failure struct {
	PracticeID string `json:"practice_id"`
	Error      string `json:"error"`
}

// PracticeReport is the report of one successfully revalidated practice.
type PracticeReport struct {
	ID         string                `json:"id"`
	Validation core.ValidationReport `json:"validation"`
}

// Summary reports a revalidation run.
type Summary struct {
	Total       int              `json:"total"`
	Processed   int              `json:"processed"`
	Success     int              `json:"success"`
	Failed      int              `json:"failed"`
	Failures    []Failure        `json:"failures"`
	Validations []PracticeReport `json:"validations"`
}

// RevalidateAll runs Handle for every practice lister knows about. A
// failing practice does not stop the run; cancellation does.
func (p *Pipeline) RevalidateAll(ctx context.Context, lister PracticeLister) (Summary, error) {
	summary := Summary{Failures: []Failure{}, Validations: []PracticeReport{}}

	ids, err := lister.ListPracticeIDs(ctx)
	if err != nil {
		return summary, fmt.Errorf("list practices: %w", err)
	}
	summary.Total = len(ids)
	slog.InfoContext(ctx, "revalidation started", "total", len(ids))

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Processed++
		report, err := p.Handle(ctx, id)
		if err != nil {
			slog.ErrorContext(ctx, "revalidation failed", "practice_id", id, "error", err)
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{PracticeID: id, Error: err.Error()})
			continue
		}
		summary.Success++
		summary.Validations = append(summary.Validations, PracticeReport{ID: id, Validation: report})
	}

	slog.InfoContext(ctx, "revalidation finished",
		"processed", summary.Processed, "success", summary.Success, "failed", summary.Failed)
	return summary, nil
}
