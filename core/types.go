package core

import (
	"encoding/json"
	"fmt"
)

// CriterionID identifies one of the six evaluation axes.
type CriterionID string

const (
	CriterionQuality         CriterionID = "Q"
	CriterionReproducibility CriterionID = "R"
	CriterionUtility         CriterionID = "U"
	CriterionApplicability   CriterionID = "A"
	CriterionInnovation      CriterionID = "I"
	CriterionReliability     CriterionID = "Rel"
)

// Criteria lists the known criteria in canonical evaluation order.
var Criteria = []CriterionID{
	CriterionQuality,
	CriterionReproducibility,
	CriterionUtility,
	CriterionApplicability,
	CriterionInnovation,
	CriterionReliability,
}

// IsKnown reports whether id is one of the six criteria.
func (id CriterionID) IsKnown() bool {
	for _, c := range Criteria {
		if c == id {
			return true
		}
	}
	return false
}

// Name returns the human readable criterion name.
func (id CriterionID) Name() string {
	switch id {
	case CriterionQuality:
		return "Quality"
	case CriterionReproducibility:
		return "Reproducibility"
	case CriterionUtility:
		return "Utility"
	case CriterionApplicability:
		return "Applicability"
	case CriterionInnovation:
		return "Innovation"
	case CriterionReliability:
		return "Reliability"
	default:
		return string(id)
	}
}

// CriterionResult is the output of one analyzer for one criterion.
type CriterionResult struct {
	Score       float64            `json:"score"` // analyzer's own rollup, informational
	Details     map[string]float64 `json:"details"`
	Explanation string             `json:"explanation"`
}

// CriterionEvaluation is the engine's verdict for a single criterion.
type CriterionEvaluation struct {
	Score       float64            `json:"score"`
	Details     map[string]float64 `json:"details"`
	Explanation string             `json:"explanation"`
	IsValid     bool               `json:"is_valid"`
}

// Evaluation is the engine output for a whole practice.
type Evaluation struct {
	ValidScores     map[CriterionID]CriterionEvaluation `json:"valid_scores"`
	InvalidScores   map[CriterionID]CriterionEvaluation `json:"invalid_scores"`
	MissingRequired []CriterionID                       `json:"missing_required"`
	FinalScore      *float64                            `json:"final_score"`
	Recommendations []string                            `json:"recommendations"`
}

// Decision is the final categorical verdict.
type Decision string

const (
	DecisionApprove          Decision = "approve"
	DecisionReview           Decision = "review"
	DecisionReject           Decision = "reject"
	DecisionNeedsImprovement Decision = "needs_improvement"
	DecisionIncomplete       Decision = "incomplete"
)

// ValidationReport is the payload persisted and published downstream.
type ValidationReport struct {
	PracticeID       string                              `json:"practice_id,omitempty"`
	PracticeType     string                              `json:"practice_type,omitempty"`
	Scores           map[CriterionID]CriterionResult     `json:"scores"`
	ValidScores      map[CriterionID]CriterionEvaluation `json:"valid_scores"`
	InvalidScores    map[CriterionID]CriterionEvaluation `json:"invalid_scores"`
	FinalScore       *float64                            `json:"final_score"`
	ReliabilityScore *float64                            `json:"reliability_score"`
	Recommendations  []string                            `json:"recommendations"`
	Decision         Decision                            `json:"decision"`
}

// Step is a single implementation step of a practice.
type Step struct {
	Description string `json:"description"`
}

// UnmarshalJSON accepts either {"description": "..."} or a bare string.
func (s *Step) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		s.Description = text
		return nil
	}
	var obj struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("invalid implementation step: %w", err)
	}
	s.Description = obj.Description
	return nil
}

// Practice is the record under evaluation. The core treats it as opaque;
// analyzers read whichever fields they need.
type Practice struct {
	ID                         string   `json:"id"`
	Title                      string   `json:"title"`
	Summary                    string   `json:"summary"`
	Problem                    string   `json:"problem"`
	Solution                   string   `json:"solution"`
	ImplementationSteps        []Step   `json:"implementation_steps,omitempty"`
	ImplementationRequirements []string `json:"implementation_requirements,omitempty"`
	Benefits                   []string `json:"benefits,omitempty"`
	Limitations                []string `json:"limitations,omitempty"`
	Tags                       []string `json:"tags,omitempty"`
	Domain                     string   `json:"domain,omitempty"`
	SubDomains                 []string `json:"sub_domains,omitempty"`
	EstimatedFinancialCost     float64  `json:"estimated_financial_cost_value,omitempty"`
	EstimatedTimeCostMinutes   int      `json:"estimated_time_cost_minutes,omitempty"`
	EstimatedResources         []string `json:"estimated_resources,omitempty"`
}
