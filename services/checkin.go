package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mindgarden/mindgarden/models"
)

// Validation failures surfaced to the API layer. Anything else coming out of
// SubmitCheckIn is a server-side failure.
var (
	ErrInvalidMoodScore   = errors.New("mood score must be between 1 and 10")
	ErrInvalidEnergyLevel = errors.New("energy level must be between 1 and 10")
	ErrMissingMethod      = errors.New("submission method is required")
	ErrTextRequired       = errors.New("text method requires a non-empty text")
	ErrUserNotFound       = errors.New("user not found")
)

// CheckInInput is one mood submission from an authenticated user.
type CheckInInput struct {
	MoodScore   int
	EnergyLevel int
	Method      string
	Text        string
}

// TokenAward describes the tokens granted by one check-in.
type TokenAward struct {
	Amount     int    `json:"amount"`
	Reason     string `json:"reason"`
	NewBalance int    `json:"new_balance"`
}

// StreakState is the user's streak sub-state as returned to callers.
type StreakState struct {
	Count       int        `json:"count"`
	LastCheckIn *time.Time `json:"last_check_in"`
	PlantLevel  string     `json:"plant_level"`
}

// CheckInOutcome is the full result of a submitted check-in.
type CheckInOutcome struct {
	CheckIn models.CheckIn
	Streak  StreakState
	Award   *TokenAward
}

// CheckInService runs the check-in workflow: persist the submission, advance
// the streak, grant tokens and record the ledger entry.
type CheckInService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewCheckInService creates a CheckInService using the wall clock.
func NewCheckInService(db *gorm.DB) *CheckInService {
	return &CheckInService{db: db, now: time.Now}
}

// NewCheckInServiceWithClock creates a CheckInService with an injected clock.
func NewCheckInServiceWithClock(db *gorm.DB, now func() time.Time) *CheckInService {
	return &CheckInService{db: db, now: now}
}

// Validate checks the submission fields before anything is persisted.
func (in CheckInInput) Validate() error {
	if in.MoodScore < 1 || in.MoodScore > 10 {
		return ErrInvalidMoodScore
	}
	if in.EnergyLevel < 1 || in.EnergyLevel > 10 {
		return ErrInvalidEnergyLevel
	}
	if strings.TrimSpace(in.Method) == "" {
		return ErrMissingMethod
	}
	if in.Method == models.CheckInMethodText && strings.TrimSpace(in.Text) == "" {
		return ErrTextRequired
	}
	return nil
}

// SubmitCheckIn records a check-in and applies the streak and reward rules.
//
// The check-in insert, the user update and the ledger insert run in a single
// transaction, and the user row is locked for the duration so concurrent
// submissions from the same user serialize instead of racing on the counter.
func (s *CheckInService) SubmitCheckIn(userID uint, in CheckInInput) (*CheckInOutcome, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	var out CheckInOutcome

	err := s.db.Transaction(func(tx *gorm.DB) error {
		record := models.CheckIn{
			UserID:      userID,
			MoodScore:   in.MoodScore,
			EnergyLevel: in.EnergyLevel,
			Method:      in.Method,
			Text:        strings.TrimSpace(in.Text),
			CreatedAt:   now,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		var user models.User
		if err := lockForUpdate(tx).First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		result := EvaluateStreak(user.StreakCount, user.LastCheckIn, now)
		reward := RewardFor(result.Transition, result.Count)

		user.StreakCount = result.Count
		last := result.LastCheckIn
		user.LastCheckIn = &last
		user.PlantLevel = result.PlantLevel

		if reward.Amount > 0 {
			user.TokenBalance += reward.Amount
			user.TokenLifetime += reward.Amount
			user.TokensUpdatedAt = &now

			entry := models.TokenTransaction{
				UserID:      userID,
				Amount:      reward.Amount,
				Type:        models.TokenTypeEarned,
				Source:      models.TokenSourceStreak,
				Description: reward.Description,
				CreatedAt:   now,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}

			out.Award = &TokenAward{
				Amount:     reward.Amount,
				Reason:     reward.Description,
				NewBalance: user.TokenBalance,
			}
		}

		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		out.CheckIn = record
		out.Streak = StreakState{
			Count:       user.StreakCount,
			LastCheckIn: user.LastCheckIn,
			PlantLevel:  user.PlantLevel,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

// History returns the user's check-ins newest first, paginated.
func (s *CheckInService) History(userID uint, page, pageSize int) ([]models.CheckIn, int64, error) {
	var items []models.CheckIn
	var total int64

	query := s.db.Model(&models.CheckIn{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// lockForUpdate adds a row lock on databases that support it. SQLite has no
// FOR UPDATE clause and serializes writers on its own.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// IsValidationError reports whether err is a client-side input problem.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidMoodScore) ||
		errors.Is(err, ErrInvalidEnergyLevel) ||
		errors.Is(err, ErrMissingMethod) ||
		errors.Is(err, ErrTextRequired)
}
