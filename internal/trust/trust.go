// Package trust maps a citizen's trust score onto a trust level and the submission
// policy that comes with it. Everything here is pure.
package trust

import (
	"fmt"

	"cityvoice/backend/internal/config"
	"cityvoice/backend/internal/models"

	"github.com/shopspring/decimal"
)

// Level is the derived trust tier of a citizen.
type Level string

const (
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

var (
	lowThreshold  = decimal.NewFromInt(config.LowTrustThreshold)
	highThreshold = decimal.NewFromInt(config.HighTrustThreshold)
)

// Limit is a daily submission quota. Unlimited quotas ignore Max.
type Limit struct {
	Max       int
	Unlimited bool
}

// Reached reports whether count submissions exhaust the quota.
func (l Limit) Reached(count int64) bool {
	return !l.Unlimited && count >= int64(l.Max)
}

func (l Limit) String() string {
	if l.Unlimited {
		return "unlimited"
	}
	return fmt.Sprintf("%d", l.Max)
}

// Policy bundles everything the trust level decides for a submitter.
type Policy struct {
	Level         Level
	DailyLimit    Limit
	InitialStatus models.ReportStatus
	ManualReview  bool
}

// ComputeLevel classifies a score. Both boundaries are closed on the outer side:
// -2 is LOW and 3 is HIGH.
func ComputeLevel(score decimal.Decimal) Level {
	switch {
	case score.LessThanOrEqual(lowThreshold):
		return LevelLow
	case score.GreaterThanOrEqual(highThreshold):
		return LevelHigh
	default:
		return LevelMedium
	}
}

// DailyReportLimit returns the rolling 24h quota for a level.
func DailyReportLimit(level Level) Limit {
	switch level {
	case LevelLow:
		return Limit{Max: config.LowDailyReportLimit}
	case LevelHigh:
		return Limit{Unlimited: true}
	default:
		return Limit{Max: config.MediumDailyReportLimit}
	}
}

// RequiresManualReview is true only for LOW.
func RequiresManualReview(level Level) bool {
	return level == LevelLow
}

// InitialStatusForLevel returns the starting status of a new report and whether it is held for review.
func InitialStatusForLevel(level Level) (models.ReportStatus, bool) {
	if RequiresManualReview(level) {
		return models.StatusManualReview, true
	}
	return models.StatusPending, false
}

// PolicyFor computes the full policy for a score.
func PolicyFor(score decimal.Decimal) Policy {
	return PolicyForLevel(ComputeLevel(score))
}

// PolicyForLevel computes the full policy for an already known level.
func PolicyForLevel(level Level) Policy {
	status, review := InitialStatusForLevel(level)
	return Policy{
		Level:         level,
		DailyLimit:    DailyReportLimit(level),
		InitialStatus: status,
		ManualReview:  review,
	}
}
