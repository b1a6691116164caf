package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Report is a single citizen complaint.
type Report struct {
	ID string `gorm:"type:uuid;primaryKey" json:"id"`
	// CitizenID is nil for anonymous reports.
	CitizenID *string `gorm:"type:uuid;index:idx_report_citizen_created" json:"citizen_id,omitempty"`

	Title       string         `gorm:"type:text;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Category    string         `gorm:"type:text;index" json:"category"`
	Latitude    float64        `json:"latitude"`
	Longitude   float64        `json:"longitude"`
	Attachments pq.StringArray `gorm:"type:text[]" json:"attachments,omitempty"` // evidence references

	Status       ReportStatus `gorm:"type:text;not null;index" json:"status"`
	ManualReview bool         `gorm:"not null;default:false" json:"manual_review"`
	Ledger       LedgerState  `gorm:"type:text;not null;default:'none'" json:"ledger"`

	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `gorm:"index:idx_report_citizen_created" json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// BeforeCreate generates a UUID and fills the ledger default.
func (r *Report) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	r.Ledger = r.Ledger.OrNone()
	return
}

// IsAnonymous reports whether the report has no owning citizen.
func (r *Report) IsAnonymous() bool {
	return r.CitizenID == nil || *r.CitizenID == ""
}
