package core

import "sort"

// CriterionEvaluator applies a ThresholdRegistry to one analyzer result.
type CriterionEvaluator struct {
	thresholds *ThresholdRegistry
}

// NewCriterionEvaluator creates an evaluator backed by thresholds.
func NewCriterionEvaluator(thresholds *ThresholdRegistry) *CriterionEvaluator {
	return &CriterionEvaluator{thresholds: thresholds}
}

// Evaluate splits result.Details into valid and invalid sub-metrics and
// computes the weighted criterion score. Sub-metrics without a configured
// threshold are excluded entirely. A low scoring optional sub-metric counts
// as valid and its raw value still enters the weighted sum.
//
// An empty Details map yields score 0 and IsValid true.
func (e *CriterionEvaluator) Evaluate(criterion CriterionID, result CriterionResult) CriterionEvaluation {
	names := make([]string, 0, len(result.Details))
	for name := range result.Details {
		names = append(names, name)
	}
	// fixed summation order keeps scores bit-for-bit reproducible
	sort.Strings(names)

	details := make(map[string]float64, len(names))
	score := 0.0
	isValid := true

	for _, name := range names {
		value := result.Details[name]
		t, ok := e.thresholds.Get(criterion, name)
		if !ok {
			continue
		}
		details[name] = value

		if value >= t.MinValue || !t.Required {
			score += value * t.Weight
			continue
		}
		// invalid metrics are always required ones
		isValid = false
	}

	return CriterionEvaluation{
		Score:       score,
		Details:     details,
		Explanation: result.Explanation,
		IsValid:     isValid,
	}
}

// RequiredFailures lists the configured required sub-metrics of result
// that fall below their minimum, sorted by name.
func (e *CriterionEvaluator) RequiredFailures(criterion CriterionID, result CriterionResult) []string {
	var failed []string
	for name, value := range result.Details {
		t, ok := e.thresholds.Get(criterion, name)
		if ok && t.Required && value < t.MinValue {
			failed = append(failed, name)
		}
	}
	sort.Strings(failed)
	return failed
}
