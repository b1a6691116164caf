package models

// LedgerState records which trust adjustment is currently outstanding for a report.
// A report carries at most one: a credit or a penalty, never both.
type LedgerState string

const (
	LedgerNone           LedgerState = "none"
	LedgerCreditApplied  LedgerState = "credit_applied"
	LedgerPenaltyApplied LedgerState = "penalty_applied"
)

// CreditApplied is the legacy trustCreditApplied view of the state.
func (l LedgerState) CreditApplied() bool { return l == LedgerCreditApplied }

// PenaltyApplied is the legacy trustPenaltyApplied view of the state.
func (l LedgerState) PenaltyApplied() bool { return l == LedgerPenaltyApplied }

// OrNone treats the zero value as LedgerNone.
func (l LedgerState) OrNone() LedgerState {
	if l == "" {
		return LedgerNone
	}
	return l
}
