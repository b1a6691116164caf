package models

import "gorm.io/gorm"

// StatusChange is the history row written for every transition request on a report.
// ToStatus equals FromStatus for message-only updates.
type StatusChange struct {
	gorm.Model

	ReportID   string       `gorm:"type:uuid;not null;index" json:"report_id"`
	FromStatus ReportStatus `gorm:"type:text" json:"from_status"`
	ToStatus   ReportStatus `gorm:"type:text" json:"to_status"`
	ActorRole  string       `gorm:"type:text;not null" json:"actor_role"`
	Message    string       `gorm:"type:text" json:"message,omitempty"`
}
