package analyzers

import (
	"context"
	"regexp"
	"strings"

	"github.com/snow-ghost/validator/core"
)

var utilityWeights = map[string]float64{
	"problem_clarity": 0.35,
	"benefits":        0.35,
	"efficiency":      0.30,
}

var numberRe = regexp.MustCompile(`\d+%?`)

// Utility scores how clearly a practice states its problem and the value it delivers.
type Utility struct{}

func (Utility) Analyze(_ context.Context, p core.Practice) core.CriterionResult {
	details := map[string]float64{
		"problem_clarity": utilityProblem(p),
		"benefits":        utilityBenefits(p),
		"efficiency":      utilityEfficiency(p),
	}
	return core.CriterionResult{
		Score:   rollup(details, utilityWeights),
		Details: details,
		Explanation: explain(details, []band{
			{"problem_clarity", "The problem is stated very clearly", "The problem statement is adequate", "The problem statement needs improvement"},
			{"benefits", "Benefits are concrete and measurable", "Benefits are described clearly enough", "Benefits need to be made concrete"},
			{"efficiency", "Efficiency is well justified", "", "Efficiency needs better justification"},
		}),
	}
}

func utilityProblem(p core.Practice) float64 {
	if p.Problem == "" {
		return 0
	}
	c := newCorpus(p.Problem)
	score := 0.0
	if c.mentions("how to") {
		score += 3.0
	}
	score += 2.0 * float64(c.count("ensuring", "maintaining", "creating", "improving", "reducing"))
	if p.Domain != "" && strings.Contains(c.text, strings.ToLower(p.Domain)) {
		score += 2.0
	}
	return normalize(score)
}

func utilityBenefits(p core.Practice) float64 {
	score := 0.0
	for _, b := range p.Benefits {
		if newCorpus(b).any("improved", "increased", "reduced", "better", "enhanced") {
			score += 2.0
		}
		if len(strings.Fields(b)) >= 4 {
			score += 1.0
		}
	}
	return normalize(score)
}

func utilityEfficiency(p core.Practice) float64 {
	score := 0.0
	if p.EstimatedFinancialCost > 0 {
		score += 2.0
	}
	if p.EstimatedTimeCostMinutes > 0 {
		score += 2.0
	}
	if len(p.Benefits) > 0 {
		text := joined(p.Benefits)
		if newCorpus(text).any("roi", "return", "efficiency", "effective", "save") {
			score += 3.0
		}
		if numberRe.MatchString(text) {
			score += 3.0
		}
	}
	return normalize(score)
}
