package models

import "time"

// Token transaction type and source tags.
const (
	TokenTypeEarned   = "earned"
	TokenSourceStreak = "streak"
)

// TokenTransaction is an immutable ledger entry recording a token award.
// One row per award event; the current balance lives on the User row and is
// never recomputed from this log.
type TokenTransaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Amount      int       `gorm:"not null" json:"amount"`
	Type        string    `gorm:"size:16;not null" json:"type"`
	Source      string    `gorm:"size:16;not null" json:"source"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}
