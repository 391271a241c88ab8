package analyzers

import "github.com/snow-ghost/validator/core"

// PracticeType is the coarse category a practice falls into.
type PracticeType string

const (
	PracticeScientific  PracticeType = "scientific"
	PracticeEngineering PracticeType = "engineering"
	PracticeProcess     PracticeType = "process"
	PracticeManagement  PracticeType = "management"
)

var classifierRules = []struct {
	kind  PracticeType
	terms []string
}{
	{PracticeScientific, []string{"doi:", "p-value", "statistical", "empirical", "hypothesis", "experiment", "research"}},
	{PracticeEngineering, []string{"algorithm", "implementation", "code", "architecture", "system", "technical", "software", "development"}},
	{PracticeProcess, []string{"process", "workflow", "methodology", "practice", "review", "agile", "scrum", "devops"}},
}

// Classify assigns a practice type from the solution and summary text.
// Rules are checked in order; management is the fallback.
func Classify(p core.Practice) PracticeType {
	c := newCorpus(p.Solution, p.Summary)
	for _, rule := range classifierRules {
		if c.any(rule.terms...) {
			return rule.kind
		}
	}
	return PracticeManagement
}
