package models

import "time"

// Check-in submission methods accepted by the API.
const (
	CheckInMethodText  = "text"
	CheckInMethodEmoji = "emoji"
	CheckInMethodVoice = "voice"
)

// CheckIn is an immutable mood submission. Rows are created once and never
// updated; they are removed only when the owning account is deleted.
type CheckIn struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	MoodScore   int       `gorm:"not null" json:"mood_score"`
	EnergyLevel int       `gorm:"not null" json:"energy_level"`
	Method      string    `gorm:"size:16;not null" json:"method"`
	Text        string    `gorm:"type:text" json:"text"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}
