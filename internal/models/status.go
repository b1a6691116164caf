package models

import "strings"

// ReportStatus is the lifecycle status of a report as stored and displayed.
type ReportStatus string

const (
	StatusPending      ReportStatus = "Pending"
	StatusInProgress   ReportStatus = "In Progress"
	StatusResolved     ReportStatus = "Resolved"
	StatusCancelled    ReportStatus = "Cancelled"
	StatusInvalid      ReportStatus = "Invalid"
	StatusManualReview ReportStatus = "Manual Review"
)

// KnownStatuses lists the fixed status vocabulary in display order.
var KnownStatuses = []ReportStatus{
	StatusPending,
	StatusInProgress,
	StatusResolved,
	StatusCancelled,
	StatusInvalid,
	StatusManualReview,
}

// Normalized returns the trimmed, lower-cased form used for comparisons.
func (s ReportStatus) Normalized() string {
	return strings.ToLower(strings.TrimSpace(string(s)))
}

// ParseStatus maps user input onto the canonical status, ignoring case and surrounding space.
func ParseStatus(raw string) (ReportStatus, bool) {
	n := ReportStatus(raw).Normalized()
	for _, s := range KnownStatuses {
		if s.Normalized() == n {
			return s, true
		}
	}
	return "", false
}
