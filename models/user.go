package models

import (
	"time"

	"gorm.io/gorm"
)

// Plant display tiers derived from the streak counter. The tier only moves
// forward with the streak and drops back to sprout on a full reset.
const (
	PlantSprout = "sprout"
	PlantLeaf   = "leaf"
	PlantFlower = "flower"
	PlantTree   = "tree"
)

// User represents an application user. Passwords are stored as bcrypt hashes only.
// The streak and token fields are the single mutable source of truth for the
// user's current state; CheckIn and TokenTransaction rows are history.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"size:64;not null" json:"username"`
	Email        string `gorm:"size:255" json:"email"`
	PasswordHash string `gorm:"size:255" json:"-"`
	Provider     string `gorm:"size:32" json:"provider"`
	ProviderID   string `gorm:"size:255" json:"provider_id"`
	RegisterIP   string `gorm:"size:45" json:"-"`
	AvatarURL    string `gorm:"size:512" json:"avatar_url"`
	Bio          string `gorm:"size:255" json:"bio"`

	// Streak sub-state
	StreakCount int        `gorm:"default:0" json:"streak_count"`
	LastCheckIn *time.Time `json:"last_check_in"`
	PlantLevel  string     `gorm:"size:16;default:'sprout'" json:"plant_level"`

	// Token sub-state
	TokenBalance    int        `gorm:"default:0" json:"token_balance"`
	TokenLifetime   int        `gorm:"default:0" json:"token_lifetime"`
	TokensUpdatedAt *time.Time `json:"tokens_updated_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	CheckIns  []CheckIn      `json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.PlantLevel == "" {
		u.PlantLevel = PlantSprout
	}
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
