// internal/lifecycle/scorer.go
package lifecycle

import (
	"math"
	"time"
)

const (
	baselineScore      = 50.0
	maxExperienceBonus = 20.0
	minScore           = 0.0
	maxScore           = 100.0
)

// ScoreInput is a snapshot of everything the priority score depends on. The
// score is a pure function of this input: identical inputs always yield the
// identical output.
type ScoreInput struct {
	ExperienceYears int
	AverageRating   float64 // 1-5 scale
	CompletionRate  float64 // percent, 0-100
	ProposedRate    *float64
	BudgetMax       float64
	SubmittedAt     time.Time
	Now             time.Time
}

// PriorityScore ranks an application in [0, 100] from the professional's
// track record, the bid's competitiveness against the project budget, and
// the bid's age.
func PriorityScore(in ScoreInput) float64 {
	score := baselineScore
	score += math.Min(float64(in.ExperienceYears)*2, maxExperienceBonus)
	score += (in.AverageRating - 3) * 5
	score += in.CompletionRate * 0.1
	score += rateBonus(in.ProposedRate, in.BudgetMax)
	score -= stalenessPenalty(in.SubmittedAt, in.Now)

	return math.Min(math.Max(score, minScore), maxScore)
}

func rateBonus(proposedRate *float64, budgetMax float64) float64 {
	if proposedRate == nil || budgetMax <= 0 {
		return 0
	}
	ratio := *proposedRate / budgetMax
	switch {
	case ratio <= 0.8:
		return 10
	case ratio <= 0.9:
		return 5
	default:
		return 0
	}
}

func stalenessPenalty(submittedAt, now time.Time) float64 {
	daysOld := int(now.Sub(submittedAt).Hours() / 24)
	return math.Max(float64(daysOld-1), 0) * 5
}
