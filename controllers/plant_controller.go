package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mindgarden/mindgarden/models"
	"github.com/mindgarden/mindgarden/services"
	"github.com/mindgarden/mindgarden/utils"
)

// PlantController reports plant growth derived from the streak.
type PlantController struct {
	db *gorm.DB
}

// NewPlantController creates a PlantController instance.
func NewPlantController(db *gorm.DB) *PlantController {
	return &PlantController{db: db}
}

// Growth returns the user's streak, plant tier and the next tier threshold.
func (p *PlantController) Growth(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := p.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to load user")
		return
	}

	utils.Success(ctx, gin.H{
		"streak_count":  user.StreakCount,
		"plant_level":   user.PlantLevel,
		"last_check_in": user.LastCheckIn,
		"next_level_at": services.NextPlantThreshold(user.StreakCount),
	})
}
