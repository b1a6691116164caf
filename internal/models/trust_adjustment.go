package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AdjustmentKind names a single ledger step.
type AdjustmentKind string

const (
	AdjustmentCredit          AdjustmentKind = "credit"
	AdjustmentCreditReversal  AdjustmentKind = "credit_reversal"
	AdjustmentPenalty         AdjustmentKind = "penalty"
	AdjustmentPenaltyReversal AdjustmentKind = "penalty_reversal"
)

// TrustAdjustment is an audit row for one applied ledger step. It is written in the same
// transaction as the score and ledger-state update it describes.
type TrustAdjustment struct {
	gorm.Model

	ReportID   string          `gorm:"type:uuid;not null;index" json:"report_id"`
	CitizenID  string          `gorm:"type:uuid;not null;index" json:"citizen_id"`
	Kind       AdjustmentKind  `gorm:"type:text;not null" json:"kind"`
	Delta      int             `gorm:"not null" json:"delta"`
	ScoreAfter decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"score_after"`
	FromStatus ReportStatus    `gorm:"type:text" json:"from_status"`
	ToStatus   ReportStatus    `gorm:"type:text" json:"to_status"`
	ActorRole  string          `gorm:"type:text" json:"actor_role"`
	AppliedAt  time.Time       `gorm:"not null" json:"applied_at"`
}
