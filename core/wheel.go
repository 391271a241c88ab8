package core

import (
	"errors"
	"fmt"
)

// RecommendationThreshold is the weighted criterion score below which a
// recommendation is emitted. It is compared against the unnormalised
// weighted score, valid or not.
const RecommendationThreshold = 6.0

// ErrNoCriteria is returned when an evaluation is requested without any
// known criterion result.
var ErrNoCriteria = errors.New("no known criteria to evaluate")

// QualityWheel aggregates per-criterion results into an Evaluation.
type QualityWheel struct {
	thresholds *ThresholdRegistry
	evaluator  *CriterionEvaluator
}

// NewQualityWheel creates a wheel over the given threshold table.
func NewQualityWheel(thresholds *ThresholdRegistry) *QualityWheel {
	return &QualityWheel{
		thresholds: thresholds,
		evaluator:  NewCriterionEvaluator(thresholds),
	}
}

// Thresholds returns the registry the wheel evaluates against.
func (w *QualityWheel) Thresholds() *ThresholdRegistry {
	return w.thresholds
}

// Evaluate runs the criterion evaluator over every known criterion in
// results, in canonical order. Unknown criterion ids are ignored.
func (w *QualityWheel) Evaluate(results map[CriterionID]CriterionResult) (Evaluation, error) {
	eval := Evaluation{
		ValidScores:     make(map[CriterionID]CriterionEvaluation),
		InvalidScores:   make(map[CriterionID]CriterionEvaluation),
		MissingRequired: []CriterionID{},
		Recommendations: []string{},
	}

	seen := 0
	for _, id := range Criteria {
		result, ok := results[id]
		if !ok {
			continue
		}
		seen++

		ce := w.evaluator.Evaluate(id, result)
		if ce.IsValid {
			eval.ValidScores[id] = ce
		} else {
			eval.InvalidScores[id] = ce
			if len(w.evaluator.RequiredFailures(id, result)) > 0 {
				eval.MissingRequired = append(eval.MissingRequired, id)
			}
		}

		if ce.Score < RecommendationThreshold {
			eval.Recommendations = append(eval.Recommendations,
				fmt.Sprintf("Criterion %s needs improvement: %s", id, ce.Explanation))
		}
	}
	if seen == 0 {
		return Evaluation{}, fmt.Errorf("evaluate practice: %w", ErrNoCriteria)
	}

	if len(eval.MissingRequired) == 0 && len(eval.ValidScores) > 0 {
		total := 0.0
		for _, id := range Criteria {
			if ce, ok := eval.ValidScores[id]; ok {
				total += ce.Score
			}
		}
		mean := total / float64(len(eval.ValidScores))
		eval.FinalScore = &mean
	}

	return eval, nil
}
