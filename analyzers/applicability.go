package analyzers

import (
	"context"

	"github.com/snow-ghost/validator/core"
)

var applicabilityWeights = map[string]float64{
	"universality": 0.35,
	"scalability":  0.35,
	"constraints":  0.30,
}

// Applicability scores how widely a practice can be applied.
type Applicability struct{}

func (Applicability) Analyze(_ context.Context, p core.Practice) core.CriterionResult {
	details := map[string]float64{
		"universality": applicabilityUniversality(p),
		"scalability":  applicabilityScalability(p),
		"constraints":  applicabilityConstraints(p),
	}
	return core.CriterionResult{
		Score:   rollup(details, applicabilityWeights),
		Details: details,
		Explanation: explain(details, []band{
			{"universality", "Widely applicable across domains", "Reasonably universal", "The scope of application should be widened"},
			{"scalability", "Excellent scalability", "Acceptable scalability", "Scalability needs improvement"},
			{"constraints", "Constraints are clearly defined", "", "Constraints need clarification"},
		}),
	}
}

func applicabilityUniversality(p core.Practice) float64 {
	c := newCorpus(p.Solution, p.Summary)
	score := 2.0 * float64(c.count("can be used", "applicable", "suitable for", "works in"))

	domains := make(map[string]struct{})
	if p.Domain != "" {
		domains[p.Domain] = struct{}{}
	}
	for _, d := range p.SubDomains {
		domains[d] = struct{}{}
	}
	for _, t := range p.Tags {
		domains[t] = struct{}{}
	}
	score += min(float64(len(domains))*2.0, 6.0)
	return normalize(score)
}

func applicabilityScalability(p core.Practice) float64 {
	c := newCorpus(p.Solution, p.Summary)
	score := 2.0 * float64(c.count("workplace", "community", "international", "personal", "team", "organization"))
	if len(p.ImplementationSteps) >= 4 {
		score += 4.0
	}
	return normalize(score)
}

func applicabilityConstraints(p core.Practice) float64 {
	score := 0.0
	for _, l := range p.Limitations {
		specific, conditional := hasSpecifics(l), hasConditions(l)
		switch {
		case specific && conditional:
			score += 3.0
		case specific || conditional:
			score += 2.0
		case len(l) >= 30:
			score += 1.0
		}
	}
	return normalize(min(score, maxScore))
}
