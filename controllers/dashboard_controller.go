package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mindgarden/mindgarden/models"
	"github.com/mindgarden/mindgarden/services"
	"github.com/mindgarden/mindgarden/utils"
)

// DashboardController aggregates the caller's recent wellness activity.
type DashboardController struct {
	db *gorm.DB
}

// NewDashboardController creates a DashboardController instance.
func NewDashboardController(db *gorm.DB) *DashboardController {
	return &DashboardController{db: db}
}

// Summary returns the last seven days of check-in activity together with the
// current streak and token balance.
func (d *DashboardController) Summary(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := d.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50110, "failed to load user")
		return
	}

	since := time.Now().AddDate(0, 0, -7)

	var checkInCount int64
	if err := d.db.Model(&models.CheckIn{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&checkInCount).Error; err != nil {
		// Fallback to 0 instead of failing the whole endpoint
		checkInCount = 0
	}

	var averages struct {
		AvgMood   float64
		AvgEnergy float64
	}
	if err := d.db.Model(&models.CheckIn{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Select("COALESCE(AVG(mood_score),0) AS avg_mood, COALESCE(AVG(energy_level),0) AS avg_energy").
		Scan(&averages).Error; err != nil {
		averages.AvgMood = 0
		averages.AvgEnergy = 0
	}

	var recent []models.CheckIn
	if err := d.db.Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at DESC").
		Limit(7).
		Find(&recent).Error; err != nil {
		recent = nil
	}

	utils.Success(ctx, gin.H{
		"check_in_count_7d": checkInCount,
		"avg_mood_7d":       averages.AvgMood,
		"avg_energy_7d":     averages.AvgEnergy,
		"recent_check_ins":  recent,
		"streak": gin.H{
			"count":         user.StreakCount,
			"last_check_in": user.LastCheckIn,
			"plant_level":   user.PlantLevel,
			"next_level_at": services.NextPlantThreshold(user.StreakCount),
		},
		"tokens": gin.H{
			"balance":  user.TokenBalance,
			"lifetime": user.TokenLifetime,
		},
	})
}
