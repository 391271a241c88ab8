package analyzers

import (
	"context"
	"fmt"

	"github.com/snow-ghost/validator/core"
)

var reliabilityWeights = map[string]float64{
	"empirical_validation": 0.35,
	"methodology":          0.25,
	"adaptability":         0.20,
	"external_validation":  0.20,
}

var (
	evidenceStrong = []string{
		"study", "research", "experiment", "evidence", "proven",
		"standard", "framework", "methodology", "practice", "established",
	}
	evidenceMedium = []string{
		"tested", "validated", "measured", "observed",
		"implemented", "applied", "used", "adopted",
	}
	evidenceMetrics = []string{
		"accuracy", "precision", "efficiency", "performance",
		"improvement", "effectiveness", "quality", "success",
	}
	logicalMarkers = []string{"therefore", "because", "consequently", "thus", "hence"}

	adaptHigh    = []string{"adapt", "flexible", "customize", "configure", "scalable", "modular", "extensible"}
	adaptMedium  = []string{"adjust", "modify", "tune", "parameter", "update", "maintain", "improve"}
	adaptContext = []string{"environment", "condition", "scenario", "case", "organization", "domain", "context", "situation"}

	externalTerms = []string{
		"certified", "approved", "standardized", "recognized",
		"established", "proven", "industry-standard", "professional",
		"recommended", "endorsed", "supported", "accepted",
		"trusted", "reliable", "effective", "successful",
		"widely used", "adopted", "implemented", "common practice",
		"best practice", "standard practice", "established method",
	}
)

// Reliability scores the evidence behind a practice. Its rollup score is
// adjusted by Correction; the details are not.
type Reliability struct{}

func (Reliability) Analyze(_ context.Context, p core.Practice) core.CriterionResult {
	details := map[string]float64{
		"empirical_validation": reliabilityEmpirical(p),
		"methodology":          reliabilityMethodology(p),
		"adaptability":         reliabilityAdaptability(p),
		"external_validation":  reliabilityExternal(p),
	}
	correction := Correction(p)

	explanation := explain(details, []band{
		{"empirical_validation", "Strong empirical base", "Sufficient empirical validation", "More empirical data is needed"},
		{"methodology", "Methodology is well developed", "Methodology is adequate", "Methodology needs improvement"},
	})
	if correction < 0 {
		explanation += fmt.Sprintf(". Correction factors applied (%.1f)", correction)
	}

	return core.CriterionResult{
		Score:       round2(rollup(details, reliabilityWeights) + correction),
		Details:     details,
		Explanation: explanation,
	}
}

// Correction returns the penalty for recent, thinly evidenced or
// contradictory practices: -0.5 for novelty, -0.5 for limited data and
// -1.0 for inconsistent results.
func Correction(p core.Practice) float64 {
	c := newCorpus(p.Solution, joined(p.Limitations))
	correction := 0.0
	if c.any("new", "novel", "recent") {
		correction -= 0.5
	}
	if c.any("limited data", "preliminary results") {
		correction -= 0.5
	}
	if c.any("contradictory", "inconsistent", "varies") {
		correction -= 1.0
	}
	return correction
}

func reliabilityEmpirical(p core.Practice) float64 {
	c := newCorpus(p.Solution, joined(p.Benefits), p.Summary)
	score := 3.0*float64(c.count(evidenceStrong...)) +
		2.0*float64(c.count(evidenceMedium...)) +
		1.5*float64(c.count(evidenceMetrics...))
	if len(p.ImplementationSteps) >= 4 {
		score += 2.0
	}
	return normalize(score)
}

func reliabilityMethodology(p core.Practice) float64 {
	score := 0.0
	switch n := len(p.ImplementationSteps); {
	case n >= 5:
		score += 3.0
	case n >= 3:
		score += 2.0
	}
	score += min(float64(len(p.ImplementationRequirements))*1.5, 3.0)
	score += min(float64(len(p.Limitations))*1.5, 3.0)
	if newCorpus(p.Problem, p.Solution).any(logicalMarkers...) {
		score += 1.0
	}
	return normalize(score)
}

func reliabilityAdaptability(p core.Practice) float64 {
	c := newCorpus(p.Solution, joined(stepTexts(p)), joined(p.Benefits))
	score := 3.0*float64(c.count(adaptHigh...)) +
		2.0*float64(c.count(adaptMedium...)) +
		1.5*float64(c.count(adaptContext...))
	if p.Domain != "" && len(p.SubDomains) > 0 {
		score += 2.0
	}
	return normalize(score)
}

func reliabilityExternal(p core.Practice) float64 {
	c := newCorpus(p.Solution, joined(p.Benefits), p.Summary)
	score := 2.5 * float64(c.count(externalTerms...))
	if c.mentions("examples") {
		score += 2.0
	}
	return normalize(score)
}
