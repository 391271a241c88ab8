package analyzers

import (
	"context"
	"regexp"

	"github.com/snow-ghost/validator/core"
)

var qualityWeights = map[string]float64{
	"fullness":    0.4,
	"structure":   0.3,
	"examples":    0.15,
	"limitations": 0.15,
}

var examplePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)examples?:?\s*\d+\.`),
	regexp.MustCompile(`(?i)for example`),
	regexp.MustCompile(`(?i)such as`),
	regexp.MustCompile(`(?i)e\.g\.`),
	regexp.MustCompile(`(?m)^\s*\d+\.\s+[A-Z][^:\n]*:`),
}

// Quality scores how complete and well structured a practice description is.
type Quality struct{}

func (Quality) Analyze(_ context.Context, p core.Practice) core.CriterionResult {
	details := map[string]float64{
		"fullness":    qualityFullness(p),
		"structure":   qualityStructure(p),
		"examples":    qualityExamples(p),
		"limitations": qualityLimitations(p),
	}
	return core.CriterionResult{
		Score:   rollup(details, qualityWeights),
		Details: details,
		Explanation: explain(details, []band{
			{"fullness", "Very detailed description", "Sufficient description", "Description needs more detail"},
			{"structure", "Excellent structure", "Acceptable structure", "Structure needs improvement"},
		}),
	}
}

func qualityFullness(p core.Practice) float64 {
	score := 0.0
	for _, text := range []string{p.Title, p.Summary, p.Problem, p.Solution} {
		if text == "" {
			continue
		}
		switch {
		case len(text) >= 200:
			score += 2.5
		case len(text) >= 50:
			score += 1.5
		}
		score += min(lexicalDiversity(text), 1.0)
	}
	return normalize(score)
}

func qualityStructure(p core.Practice) float64 {
	steps := stepTexts(p)
	score := min(float64(len(steps))*2, 6)
	for i := 1; i < len(steps); i++ {
		score += overlap(steps[i-1], steps[i])
	}
	return normalize(score)
}

func qualityExamples(p core.Practice) float64 {
	text := p.Solution + " " + p.Summary
	score := 0.0
	for _, re := range examplePatterns {
		score += float64(len(re.FindAllStringIndex(text, -1))) * 2.5
	}
	return normalize(score)
}

func qualityLimitations(p core.Practice) float64 {
	score := 0.0
	for _, l := range p.Limitations {
		if len(l) < 30 {
			continue
		}
		score += 2.5
		if hasSpecifics(l) {
			score += 1.0
		}
	}
	return normalize(score)
}
