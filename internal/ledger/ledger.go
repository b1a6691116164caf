// Package ledger decides which trust credits and penalties a status change applies or reverses.
//
// A report carries at most one outstanding adjustment. Re-applying a transition, or replaying it
// out of order, never moves the score twice in the same direction for the same report.
package ledger

import (
	"cityvoice/backend/internal/config"
	"cityvoice/backend/internal/models"
)

// Class groups statuses by their effect on the submitter's trust.
type Class int

const (
	Neutral Class = iota
	Positive
	Negative
)

func (c Class) String() string {
	switch c {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return "neutral"
	}
}

// Classify maps a status onto its class. Matching ignores case and surrounding space,
// and unknown strings are neutral.
func Classify(status models.ReportStatus) Class {
	switch status.Normalized() {
	case models.StatusInProgress.Normalized(), models.StatusResolved.Normalized():
		return Positive
	case models.StatusInvalid.Normalized():
		return Negative
	default:
		return Neutral
	}
}

// Event is a single status change as seen by the ledger.
type Event struct {
	PreviousStatus models.ReportStatus
	NewStatus      models.ReportStatus
	State          models.LedgerState
}

// Step is one adjustment the ledger applied.
type Step struct {
	Kind  models.AdjustmentKind
	Delta int
}

// Outcome is the result of applying an Event.
type Outcome struct {
	State models.LedgerState
	Delta int
	Steps []Step
}

// Changed reports whether the score moves.
func (o Outcome) Changed() bool {
	return len(o.Steps) > 0
}

func (o *Outcome) apply(kind models.AdjustmentKind, delta int, next models.LedgerState) {
	o.Steps = append(o.Steps, Step{Kind: kind, Delta: delta})
	o.Delta += delta
	o.State = next
}

// Apply runs the ledger rules against ev and returns the new state and score delta.
func Apply(ev Event) Outcome {
	out := Outcome{State: ev.State.OrNone()}
	prev := Classify(ev.PreviousStatus)
	next := Classify(ev.NewStatus)

	if next == Negative {
		if out.State.CreditApplied() {
			out.apply(models.AdjustmentCreditReversal, -config.TrustCreditAmount, models.LedgerNone)
		}
		if !out.State.PenaltyApplied() {
			out.apply(models.AdjustmentPenalty, -config.TrustPenaltyAmount, models.LedgerPenaltyApplied)
		}
		return out
	}

	if out.State.PenaltyApplied() && prev == Negative {
		out.apply(models.AdjustmentPenaltyReversal, config.TrustPenaltyAmount, models.LedgerNone)
	}

	switch {
	case next == Positive:
		// A penalty left over from a stale previous status blocks the credit until it is reversed.
		if out.State == models.LedgerNone {
			out.apply(models.AdjustmentCredit, config.TrustCreditAmount, models.LedgerCreditApplied)
		}
	case out.State.CreditApplied() && prev == Positive:
		out.apply(models.AdjustmentCreditReversal, -config.TrustCreditAmount, models.LedgerNone)
	}

	return out
}
