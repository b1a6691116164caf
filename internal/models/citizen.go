package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Citizen is a report submitter. The intake core only reads the verification flag and
// reads/writes the trust score; the rest belongs to the account subsystem.
type Citizen struct {
	ID         string          `gorm:"type:uuid;primaryKey" json:"id"`
	Verified   bool            `gorm:"not null;default:false" json:"verified"`
	TrustScore decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"trust_score"`

	Email          string `json:"email,omitempty"`
	TelegramChatID int64  `gorm:"index" json:"telegram_chat_id,omitempty"`
	Language       string `gorm:"not null;default:'en'" json:"language"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate generates a UUID for the citizen if the ID is not set yet.
func (c *Citizen) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}
