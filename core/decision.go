package core

const (
	ApproveThreshold = 7.0
	ReviewThreshold  = 5.0
)

// Decide maps an evaluation to a decision. Rules are checked in order;
// missing required criteria always win over any computed score.
func Decide(eval Evaluation) Decision {
	if len(eval.MissingRequired) > 0 {
		return DecisionNeedsImprovement
	}
	if eval.FinalScore == nil {
		return DecisionIncomplete
	}
	switch score := *eval.FinalScore; {
	case score >= ApproveThreshold:
		return DecisionApprove
	case score >= ReviewThreshold:
		return DecisionReview
	default:
		return DecisionReject
	}
}

// ReliabilityScore returns the weighted Rel score when that criterion is valid.
func ReliabilityScore(eval Evaluation) *float64 {
	ce, ok := eval.ValidScores[CriterionReliability]
	if !ok {
		return nil
	}
	score := ce.Score
	return &score
}
