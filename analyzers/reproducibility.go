package analyzers

import (
	"context"
	"strings"

	"github.com/snow-ghost/validator/core"
)

var reproducibilityWeights = map[string]float64{
	"steps_clarity": 0.4,
	"requirements":  0.3,
	"resources":     0.3,
}

// Reproducibility scores whether a practice can be repeated from its
// description alone.
type Reproducibility struct{}

func (Reproducibility) Analyze(_ context.Context, p core.Practice) core.CriterionResult {
	details := map[string]float64{
		"steps_clarity": reproducibilitySteps(p),
		"requirements":  reproducibilityRequirements(p),
		"resources":     reproducibilityResources(p),
	}
	return core.CriterionResult{
		Score:   rollup(details, reproducibilityWeights),
		Details: details,
		Explanation: explain(details, []band{
			{"steps_clarity", "Implementation steps are clear and detailed", "Implementation steps are understandable", "Implementation steps need a better description"},
			{"requirements", "Requirements are well defined", "Requirements are adequately described", "Requirements need clarification"},
			{"resources", "Resources are estimated in detail", "", "Resources need a more precise estimate"},
		}),
	}
}

func reproducibilitySteps(p core.Practice) float64 {
	score := 0.0
	for _, s := range stepTexts(p) {
		if len(s) < 50 || !hasActionVerb(s) {
			continue
		}
		score += 2.0
		if hasSpecifics(s) {
			score += 1.0
		}
	}
	return normalize(min(score, maxScore))
}

func reproducibilityRequirements(p core.Practice) float64 {
	score := 0.0
	for _, req := range p.ImplementationRequirements {
		if len(strings.Fields(req)) >= 3 {
			score += 2.0
		} else {
			score += 1.0
		}
		lower := strings.ToLower(req)
		for _, sd := range p.SubDomains {
			if sd != "" && strings.Contains(lower, strings.ToLower(sd)) {
				score += 0.5
				break
			}
		}
	}
	if len(p.ImplementationSteps) > 0 {
		score += 2.0
	}
	return normalize(score)
}

func reproducibilityResources(p core.Practice) float64 {
	score := 0.0
	if p.EstimatedFinancialCost > 0 {
		score += 3.0
	}
	if p.EstimatedTimeCostMinutes > 0 {
		score += 3.0
	}
	score += float64(min(len(p.EstimatedResources), 4))
	return normalize(score)
}
