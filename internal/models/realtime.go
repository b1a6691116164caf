package models

import "time"

// Event types published after a committed change.
const (
	EventReportSubmitted = "report.submitted"
	EventReportStatus    = "report.status"
	EventReportMessage   = "report.message"
)

// TriageEvent is the payload fanned out to staff feeds, the event bus and citizen notifications.
type TriageEvent struct {
	Type         string       `json:"type"`
	ReportID     string       `json:"report_id"`
	Title        string       `json:"title,omitempty"`
	CitizenID    string       `json:"citizen_id,omitempty"`
	FromStatus   ReportStatus `json:"from_status,omitempty"`
	Status       ReportStatus `json:"status"`
	ManualReview bool         `json:"manual_review"`
	ActorRole    string       `json:"actor_role,omitempty"`
	Message      string       `json:"message,omitempty"`
	TrustDelta   int          `json:"trust_delta"`
	OccurredAt   time.Time    `json:"occurred_at"`
}
