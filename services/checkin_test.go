package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mindgarden/mindgarden/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// A single connection keeps the in-memory database alive and shared.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.User{}, &models.CheckIn{}, &models.TokenTransaction{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return db
}

func newTestUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{Username: "daisy", Email: "daisy@example.com"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// fixedClock returns a settable clock function for the service.
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func TestSubmitCheckInValidation(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db)
	svc := NewCheckInService(db)

	tests := []struct {
		name    string
		input   CheckInInput
		wantErr error
	}{
		{"mood too low", CheckInInput{MoodScore: 0, EnergyLevel: 5, Method: "emoji"}, ErrInvalidMoodScore},
		{"mood too high", CheckInInput{MoodScore: 11, EnergyLevel: 5, Method: "emoji"}, ErrInvalidMoodScore},
		{"energy out of range", CheckInInput{MoodScore: 5, EnergyLevel: 0, Method: "emoji"}, ErrInvalidEnergyLevel},
		{"missing method", CheckInInput{MoodScore: 5, EnergyLevel: 5}, ErrMissingMethod},
		{"text method without text", CheckInInput{MoodScore: 5, EnergyLevel: 5, Method: "text", Text: "  "}, ErrTextRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitCheckIn(user.ID, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SubmitCheckIn() error = %v, want %v", err, tt.wantErr)
			}
			if !IsValidationError(err) {
				t.Errorf("IsValidationError(%v) = false, want true", err)
			}
		})
	}

	// Nothing should be persisted on validation failure.
	var count int64
	db.Model(&models.CheckIn{}).Count(&count)
	if count != 0 {
		t.Errorf("check-ins persisted after validation errors = %d, want 0", count)
	}
}

func TestSubmitCheckInUnknownUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewCheckInService(db)

	_, err := svc.SubmitCheckIn(9999, CheckInInput{MoodScore: 5, EnergyLevel: 5, Method: "emoji"})
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("SubmitCheckIn() error = %v, want ErrUserNotFound", err)
	}
}

func TestSubmitCheckInLifecycle(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db)
	clock := &fixedClock{now: time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)}
	svc := NewCheckInServiceWithClock(db, clock.Now)

	// First-ever check-in: sprout, 10 tokens.
	out, err := svc.SubmitCheckIn(user.ID, CheckInInput{MoodScore: 7, EnergyLevel: 6, Method: "text", Text: "ok"})
	if err != nil {
		t.Fatalf("first check-in: %v", err)
	}
	if out.Streak.Count != 1 || out.Streak.PlantLevel != models.PlantSprout {
		t.Errorf("first streak = {%d %s}, want {1 sprout}", out.Streak.Count, out.Streak.PlantLevel)
	}
	if out.Award == nil || out.Award.Amount != 10 || out.Award.Reason != "First check-in" || out.Award.NewBalance != 10 {
		t.Errorf("first award = %+v, want {10 First check-in 10}", out.Award)
	}
	if out.CheckIn.ID == 0 || out.CheckIn.MoodScore != 7 || out.CheckIn.EnergyLevel != 6 {
		t.Errorf("check-in row = %+v, want persisted mood=7 energy=6", out.CheckIn)
	}

	// One calendar day later: count 2, flat 5 tokens.
	clock.now = clock.now.Add(24 * time.Hour)
	out, err = svc.SubmitCheckIn(user.ID, CheckInInput{MoodScore: 6, EnergyLevel: 5, Method: "emoji"})
	if err != nil {
		t.Fatalf("second check-in: %v", err)
	}
	if out.Streak.Count != 2 || out.Streak.PlantLevel != models.PlantSprout {
		t.Errorf("second streak = {%d %s}, want {2 sprout}", out.Streak.Count, out.Streak.PlantLevel)
	}
	if out.Award == nil || out.Award.Amount != 5 || out.Award.Reason != "Day 2 streak" || out.Award.NewBalance != 15 {
		t.Errorf("second award = %+v, want {5 Day 2 streak 15}", out.Award)
	}

	// Same-day repeat: streak untouched, no award, no new ledger row.
	clock.now = clock.now.Add(2 * time.Hour)
	out, err = svc.SubmitCheckIn(user.ID, CheckInInput{MoodScore: 4, EnergyLevel: 4, Method: "emoji"})
	if err != nil {
		t.Fatalf("same-day check-in: %v", err)
	}
	if out.Streak.Count != 2 {
		t.Errorf("same-day streak count = %d, want 2", out.Streak.Count)
	}
	if out.Award != nil {
		t.Errorf("same-day award = %+v, want nil", out.Award)
	}
	var ledger int64
	db.Model(&models.TokenTransaction{}).Where("user_id = ?", user.ID).Count(&ledger)
	if ledger != 2 {
		t.Errorf("ledger rows = %d, want 2", ledger)
	}

	// Skip three calendar days: reset to 1, 2 tokens.
	clock.now = clock.now.Add(3 * 24 * time.Hour)
	out, err = svc.SubmitCheckIn(user.ID, CheckInInput{MoodScore: 5, EnergyLevel: 5, Method: "emoji"})
	if err != nil {
		t.Fatalf("reset check-in: %v", err)
	}
	if out.Streak.Count != 1 || out.Streak.PlantLevel != models.PlantSprout {
		t.Errorf("reset streak = {%d %s}, want {1 sprout}", out.Streak.Count, out.Streak.PlantLevel)
	}
	if out.Award == nil || out.Award.Amount != 2 || out.Award.Reason != "Returned for check-in" || out.Award.NewBalance != 17 {
		t.Errorf("reset award = %+v, want {2 Returned for check-in 17}", out.Award)
	}

	// Lifetime never decreases and tracks every award.
	var persisted models.User
	if err := db.First(&persisted, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if persisted.TokenLifetime != 17 || persisted.TokenBalance != 17 {
		t.Errorf("tokens = {balance %d lifetime %d}, want {17 17}", persisted.TokenBalance, persisted.TokenLifetime)
	}

	// Every check-in produced a row, including the same-day one.
	var rows int64
	db.Model(&models.CheckIn{}).Where("user_id = ?", user.ID).Count(&rows)
	if rows != 4 {
		t.Errorf("check-in rows = %d, want 4", rows)
	}
}

func TestSubmitCheckInMilestone(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db)

	// Seed a user one day short of the 7-day milestone.
	last := time.Date(2024, time.June, 6, 8, 0, 0, 0, time.UTC)
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"streak_count":   6,
		"last_check_in":  last,
		"plant_level":    models.PlantLeaf,
		"token_balance":  40,
		"token_lifetime": 40,
	}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	clock := &fixedClock{now: time.Date(2024, time.June, 7, 8, 0, 0, 0, time.UTC)}
	svc := NewCheckInServiceWithClock(db, clock.Now)

	out, err := svc.SubmitCheckIn(user.ID, CheckInInput{MoodScore: 8, EnergyLevel: 7, Method: "emoji"})
	if err != nil {
		t.Fatalf("milestone check-in: %v", err)
	}
	if out.Streak.Count != 7 || out.Streak.PlantLevel != models.PlantFlower {
		t.Errorf("milestone streak = {%d %s}, want {7 flower}", out.Streak.Count, out.Streak.PlantLevel)
	}
	if out.Award == nil || out.Award.Amount != 25 || out.Award.Reason != "7-day streak milestone" {
		t.Errorf("milestone award = %+v, want {25 7-day streak milestone}", out.Award)
	}

	var entry models.TokenTransaction
	if err := db.Where("user_id = ?", user.ID).Order("id DESC").First(&entry).Error; err != nil {
		t.Fatalf("load ledger: %v", err)
	}
	if entry.Type != models.TokenTypeEarned || entry.Source != models.TokenSourceStreak || entry.Amount != 25 {
		t.Errorf("ledger entry = %+v, want earned/streak/25", entry)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db)
	base := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		rec := models.CheckIn{
			UserID:      user.ID,
			MoodScore:   5,
			EnergyLevel: 5,
			Method:      "emoji",
			CreatedAt:   base.Add(time.Duration(i) * 24 * time.Hour),
		}
		if err := db.Create(&rec).Error; err != nil {
			t.Fatalf("seed check-in: %v", err)
		}
	}

	svc := NewCheckInService(db)
	items, total, err := svc.History(user.ID, 1, 3)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(items) != 3 {
		t.Fatalf("page size = %d, want 3", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i].CreatedAt.After(items[i-1].CreatedAt) {
			t.Errorf("history not newest-first at index %d", i)
		}
	}
}

// mysqlNamed reports the mysql dialect name while running on sqlite, so the
// locking branch can be exercised without a server.
type mysqlNamed struct{ gorm.Dialector }

func (mysqlNamed) Name() string { return "mysql" }

func TestRowLockClausePerDialect(t *testing.T) {
	db := newTestDB(t)
	var user models.User
	stmt := lockForUpdate(db.Session(&gorm.Session{DryRun: true})).First(&user, 1).Statement
	if sql := stmt.SQL.String(); strings.Contains(sql, "FOR UPDATE") {
		t.Errorf("sqlite query = %q, want no FOR UPDATE clause", sql)
	}

	mdb, err := gorm.Open(mysqlNamed{sqlite.Open(":memory:")}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open mysql-named sqlite: %v", err)
	}
	// The embedded sqlite dialector installs a "FOR" clause builder that
	// strips Locking clauses; remove it so the simulated mysql dialect
	// renders the clause the way a real mysql dialector would.
	delete(mdb.ClauseBuilders, "FOR")
	t.Cleanup(func() {
		sqlDB, _ := mdb.DB()
		_ = sqlDB.Close()
	})

	stmt = lockForUpdate(mdb.Session(&gorm.Session{DryRun: true})).First(&user, 1).Statement
	if sql := stmt.SQL.String(); !strings.Contains(sql, "FOR UPDATE") {
		t.Errorf("mysql query = %q, want FOR UPDATE clause", sql)
	}
}
