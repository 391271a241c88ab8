package core

import "context"

// Analyzer scores one criterion of a practice. Implementations must be total:
// on internal failure they return a neutral result instead of an error.
type Analyzer interface {
	Analyze(ctx context.Context, practice Practice) CriterionResult
}

// AnalyzerFunc adapts a plain function to the Analyzer interface.
type AnalyzerFunc func(ctx context.Context, practice Practice) CriterionResult

// Analyze calls f.
func (f AnalyzerFunc) Analyze(ctx context.Context, practice Practice) CriterionResult {
	return f(ctx, practice)
}

// PracticeSource retrieves full practice records.
type PracticeSource interface {
	GetPractice(ctx context.Context, id string) (Practice, error)
}

// ReportSink persists validation reports.
type ReportSink interface {
	UpsertValidation(ctx context.Context, practiceID string, report ValidationReport) error
}

// DecisionRecorder records final decisions to an append-only ledger.
type DecisionRecorder interface {
	Record(ctx context.Context, report ValidationReport) error
}

// NeutralScore is the mid-scale value substituted for every sub-metric of
// an analyzer that could not produce a result.
const NeutralScore = 5.0

// NeutralResult builds the fallback result for a failed analyzer.
func NeutralResult(metrics []string, reason string) CriterionResult {
	details := make(map[string]float64, len(metrics))
	for _, m := range metrics {
		details[m] = NeutralScore
	}
	return CriterionResult{
		Score:       NeutralScore,
		Details:     details,
		Explanation: "analysis unavailable: " + reason,
	}
}
