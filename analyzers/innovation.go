package analyzers

import (
	"context"
	"strings"

	"github.com/snow-ghost/validator/core"
)

var innovationWeights = map[string]float64{
	"novelty":         0.4,
	"tech_complexity": 0.3,
	"potential":       0.3,
}

var (
	noveltyHigh   = []string{"new", "novel", "innovative", "unique", "original", "pioneering"}
	noveltyMedium = []string{"improved", "enhanced", "advanced", "modern"}
	noveltyLow    = []string{"traditional", "conventional", "standard", "typical"}
	innovationTag = []string{"innovation", "ai", "ml", "blockchain", "emerging"}

	techAdvanced = []string{"ai", "ml", "blockchain", "quantum", "neural"}
	techModern   = []string{"cloud", "microservices", "api", "distributed"}
	techTools    = []string{"python", "tensorflow", "kubernetes", "docker"}

	potentialTerms = []string{
		"future", "potential", "roadmap", "vision", "long-term",
		"expand", "extend", "grow", "scale", "develop",
		"transform", "improve", "enhance", "strengthen",
	}
)

// Innovation scores novelty and development potential.
type Innovation struct{}

func (Innovation) Analyze(_ context.Context, p core.Practice) core.CriterionResult {
	details := map[string]float64{
		"novelty":         innovationNovelty(p),
		"tech_complexity": innovationTech(p),
		"potential":       innovationPotential(p),
	}
	return core.CriterionResult{
		Score:   rollup(details, innovationWeights),
		Details: details,
		Explanation: explain(details, []band{
			{"novelty", "High degree of novelty", "Contains innovative elements", "Innovation should be strengthened"},
			{"tech_complexity", "Uses advanced technology", "Moderate technical complexity", "The technical side could be stronger"},
			{"potential", "Large development potential", "", "Development potential should be described better"},
		}),
	}
}

func innovationNovelty(p core.Practice) float64 {
	c := newCorpus(p.Solution, p.Summary, joined(p.Benefits))
	score := 2.5*float64(c.count(noveltyHigh...)) +
		1.5*float64(c.count(noveltyMedium...)) -
		1.0*float64(c.count(noveltyLow...))
	for _, tag := range p.Tags {
		tc := newCorpus(tag)
		if tc.any(innovationTag...) {
			score += 2.0
		}
	}
	return normalize(score)
}

func innovationTech(p core.Practice) float64 {
	c := newCorpus(p.Solution, strings.Join(p.ImplementationRequirements, " "))
	score := 3.0*float64(c.count(techAdvanced...)) +
		2.0*float64(c.count(techModern...)) +
		1.0*float64(c.count(techTools...))
	if len(p.ImplementationSteps) >= 5 {
		score += 2.0
	}
	return normalize(score)
}

func innovationPotential(p core.Practice) float64 {
	c := newCorpus(joined(p.Benefits), p.Solution)
	score := 2.0 * float64(c.count(potentialTerms...))
	if len(p.ImplementationSteps) > 0 {
		score += 2.0
	}
	return normalize(score)
}
