package config

import "time"

const (
	// Trust levels
	LowTrustThreshold  = -2 // score <= threshold is LOW
	HighTrustThreshold = 3  // score >= threshold is HIGH

	// Daily quotas per level. HIGH has no cap.
	LowDailyReportLimit    = 1
	MediumDailyReportLimit = 5
	SubmissionWindow       = 24 * time.Hour

	// Ledger deltas
	TrustCreditAmount  = 1
	TrustPenaltyAmount = 2

	// Unverified citizens get exactly this many submissions before verification is required.
	UnverifiedFreeSubmissions = 1
)
