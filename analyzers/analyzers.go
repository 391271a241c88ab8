// Package analyzers holds the heuristic per-criterion analyzers and the
// language model backed semantic analyzer.
package analyzers

import "github.com/snow-ghost/validator/core"

// Default returns the six heuristic analyzers keyed by criterion.
func Default() map[core.CriterionID]core.Analyzer {
	return map[core.CriterionID]core.Analyzer{
		core.CriterionQuality:         Quality{},
		core.CriterionReproducibility: Reproducibility{},
		core.CriterionUtility:         Utility{},
		core.CriterionApplicability:   Applicability{},
		core.CriterionInnovation:      Innovation{},
		core.CriterionReliability:     Reliability{},
	}
}

// Weights returns the rollup weights an analyzer uses for its own score.
func Weights(id core.CriterionID) map[string]float64 {
	var src map[string]float64
	switch id {
	case core.CriterionQuality:
		src = qualityWeights
	case core.CriterionReproducibility:
		src = reproducibilityWeights
	case core.CriterionUtility:
		src = utilityWeights
	case core.CriterionApplicability:
		src = applicabilityWeights
	case core.CriterionInnovation:
		src = innovationWeights
	case core.CriterionReliability:
		src = reliabilityWeights
	}
	out := make(map[string]float64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
