// Package ledger keeps an append-only record of validation decisions.
package ledger

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/snow-ghost/validator/core"
)

// DefaultStakeAmount is the stake attached to every recorded decision.
const DefaultStakeAmount int64 = 100

// Entry is one recorded decision.
type Entry struct {
	ID          string        `json:"id"`
	PracticeID  string        `json:"practice_id"`
	Q           int           `json:"q"`
	R           int           `json:"r"`
	U           int           `json:"u"`
	A           int           `json:"a"`
	I           int           `json:"i"`
	Approved    bool          `json:"approved"`
	StakeAmount int64         `json:"stake_amount"`
	Decision    core.Decision `json:"decision"`
	FinalScore  *float64      `json:"final_score"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Summary counts recorded decisions.
type Summary struct {
	Total      int                   `json:"total"`
	ByDecision map[core.Decision]int `json:"by_decision"`
}

// NewEntry converts a report into a ledger entry. Criterion scores are the
// analyzers' rollups rounded to integers.
func NewEntry(report core.ValidationReport, stake int64) Entry {
	score := func(id core.CriterionID) int {
		return int(math.Round(report.Scores[id].Score))
	}
	return Entry{
		ID:          uuid.NewString(),
		PracticeID:  report.PracticeID,
		Q:           score(core.CriterionQuality),
		R:           score(core.CriterionReproducibility),
		U:           score(core.CriterionUtility),
		A:           score(core.CriterionApplicability),
		I:           score(core.CriterionInnovation),
		Approved:    report.Decision == core.DecisionApprove,
		StakeAmount: stake,
		Decision:    report.Decision,
		FinalScore:  report.FinalScore,
		CreatedAt:   time.Now().UTC(),
	}
}
