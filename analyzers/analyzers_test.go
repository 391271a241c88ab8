package analyzers

import (
	"context"
	"testing"

	"github.com/snow-ghost/validator/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePractice() core.Practice {
	return core.Practice{
		ID:      "p-1",
		Title:   "Structured code review checklist",
		Summary: "A checklist based review process that can be used by any team to catch defects early.",
		Problem: "How to keep reducing defects while improving code quality in software teams",
		Solution: "Reviewers follow a shared checklist. The practice is established and widely used; " +
			"studies show measurable improvement in defect rates. For example, teams run linters such as golangci-lint first.",
		ImplementationSteps: []core.Step{
			{Description: "Configure the linter with 12 rules and run it on every pull request in CI"},
			{Description: "Write the checklist with the team and store it next to the code in Git"},
			{Description: "Assign two reviewers per change and track review time in the dashboard"},
			{Description: "Review the checklist every quarter and update it based on escaped defects"},
		},
		ImplementationRequirements: []string{"Code hosting with pull requests", "CI"},
		Benefits:                   []string{"Reduced escaped defects by 30%", "Saves review time for senior engineers"},
		Limitations:                []string{"Requires at least 3 reviewers per change request", "short"},
		Tags:                       []string{"quality", "review"},
		Domain:                     "software",
		SubDomains:                 []string{"testing"},
		EstimatedFinancialCost:     100,
		EstimatedTimeCostMinutes:   30,
		EstimatedResources:         []string{"linter", "ci", "dashboard", "checklist", "wiki"},
	}
}

func TestDefault_CoversAllCriteria(t *testing.T) {
	set := Default()
	require.Len(t, set, len(core.Criteria))
	for _, id := range core.Criteria {
		assert.Contains(t, set, id)
	}
}

func TestAnalyzers_DetailsMatchDefaultThresholds(t *testing.T) {
	thresholds := core.DefaultThresholds()
	ctx := context.Background()

	for id, a := range Default() {
		res := a.Analyze(ctx, samplePractice())
		names := make([]string, 0, len(res.Details))
		for name, v := range res.Details {
			names = append(names, name)
			assert.GreaterOrEqual(t, v, 0.0, "%s/%s", id, name)
			assert.LessOrEqual(t, v, 10.0, "%s/%s", id, name)
		}
		assert.ElementsMatch(t, thresholds.Metrics(id), names, "criterion %s", id)
		assert.NotEmpty(t, res.Explanation)
	}
}

func TestAnalyzers_EmptyPractice(t *testing.T) {
	ctx := context.Background()
	for id, a := range Default() {
		res := a.Analyze(ctx, core.Practice{})
		assert.Equal(t, 0.0, res.Score, "criterion %s", id)
		for name, v := range res.Details {
			assert.Equal(t, 0.0, v, "%s/%s", id, name)
		}
	}
}

func TestQuality(t *testing.T) {
	p := core.Practice{
		Solution: "Use tools such as linters, e.g. golangci-lint. For example, run it in CI.",
		ImplementationSteps: []core.Step{
			{Description: "write tests"}, {Description: "write tests"}, {Description: "write tests"},
		},
		Limitations: []string{"Requires at least 3 reviewers per change request", "short"},
	}

	assert.InDelta(t, 7.5, qualityExamples(p), 1e-9)
	assert.InDelta(t, 8.0, qualityStructure(p), 1e-9)
	assert.InDelta(t, 3.5, qualityLimitations(p), 1e-9)
}

func TestReproducibility(t *testing.T) {
	p := samplePractice()

	assert.Equal(t, 10.0, reproducibilityResources(p))
	// 3 + 3 for the steps naming a number or proper noun, 2 + 2 for the rest
	assert.Equal(t, 10.0, reproducibilitySteps(p))

	p.ImplementationSteps = p.ImplementationSteps[:2]
	assert.Equal(t, 6.0, reproducibilitySteps(p))

	// "Code hosting with pull requests" 2, "CI" 1, steps present 2
	assert.Equal(t, 5.0, reproducibilityRequirements(p))
}

func TestUtility(t *testing.T) {
	p := samplePractice()

	// "how to" 3, reducing 2, improving 2, domain 2
	assert.Equal(t, 9.0, utilityProblem(p))

	p.EstimatedFinancialCost, p.EstimatedTimeCostMinutes = 0, 0
	p.Benefits = []string{"Saves 20% of review time"}
	assert.Equal(t, 6.0, utilityEfficiency(p))
}

func TestApplicability(t *testing.T) {
	p := samplePractice()

	// "can be used" 2, four distinct domains capped at 6
	assert.Equal(t, 8.0, applicabilityUniversality(p))

	p.Limitations = []string{"Fails if more than 5 reviewers"}
	assert.Equal(t, 3.0, applicabilityConstraints(p))
}

func TestInnovation_ConventionalClampsToZero(t *testing.T) {
	p := core.Practice{Solution: "A traditional approach"}
	assert.Equal(t, 0.0, innovationNovelty(p))
}

func TestReliability_Correction(t *testing.T) {
	tests := []struct {
		name     string
		practice core.Practice
		want     float64
	}{
		{"none", core.Practice{Solution: "An established method"}, 0},
		{"novelty", core.Practice{Solution: "A novel approach"}, -0.5},
		{"all", core.Practice{
			Solution:    "A new approach with contradictory findings",
			Limitations: []string{"limited data so far"},
		}, -2.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Correction(tt.practice))
		})
	}
}

func TestReliability_ScoreIncludesCorrection(t *testing.T) {
	p := samplePractice()
	base := Reliability{}.Analyze(context.Background(), p)

	p.Limitations = append(p.Limitations, "results are inconsistent across teams")
	corrected := Reliability{}.Analyze(context.Background(), p)

	assert.Equal(t, base.Details["empirical_validation"], corrected.Details["empirical_validation"])
	assert.Contains(t, corrected.Explanation, "Correction factors applied")
	assert.InDelta(t, base.Score-1.0, corrected.Score, 0.011)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		want PracticeType
	}{
		{"We ran a controlled experiment", PracticeScientific},
		{"A layered software architecture", PracticeEngineering},
		{"An agile workflow for the team", PracticeProcess},
		{"Weekly budget meetings", PracticeManagement},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(core.Practice{Solution: tt.text}))
		})
	}
}

func TestWeights_ReturnsCopy(t *testing.T) {
	w := Weights(core.CriterionQuality)
	w["fullness"] = 0
	assert.Equal(t, 0.4, Weights(core.CriterionQuality)["fullness"])
	assert.Empty(t, Weights("Z"))
}

func TestRollup_IndependentOfMapOrder(t *testing.T) {
	// summing these in a different order lands on the other side of 2.585
	build := func() (map[string]float64, map[string]float64) {
		return map[string]float64{"a": 1.02, "b": 4.12, "c": 1.18},
			map[string]float64{"a": 0.31, "b": 0.27, "c": 0.98}
	}

	details, weights := build()
	want := rollup(details, weights)
	assert.InDelta(t, 2.59, want, 0.011)
	for i := 0; i < 200; i++ {
		details, weights := build()
		require.Equal(t, want, rollup(details, weights))
	}
}
