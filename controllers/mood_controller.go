package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mindgarden/mindgarden/services"
	"github.com/mindgarden/mindgarden/utils"
)

// MoodController exposes the check-in workflow and mood history.
type MoodController struct {
	db      *gorm.DB
	checkin *services.CheckInService
}

// NewMoodController creates a MoodController instance.
func NewMoodController(db *gorm.DB) *MoodController {
	return &MoodController{db: db, checkin: services.NewCheckInService(db)}
}

// CheckIn records a mood submission, advances the streak and grants tokens.
func (m *MoodController) CheckIn(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		MoodScore   int    `json:"mood_score" binding:"required"`
		EnergyLevel int    `json:"energy_level" binding:"required"`
		Method      string `json:"method" binding:"required"`
		Text        string `json:"text"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}

	out, err := m.checkin.SubmitCheckIn(userID, services.CheckInInput{
		MoodScore:   req.MoodScore,
		EnergyLevel: req.EnergyLevel,
		Method:      req.Method,
		Text:        utils.Sanitize(req.Text),
	})
	if err != nil {
		if services.IsValidationError(err) {
			utils.Error(ctx, http.StatusBadRequest, 40061, err.Error())
			return
		}
		// A missing user for an authenticated caller is a server-side problem.
		utils.Sugar.Errorf("check-in failed for user %d: %v", userID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to save check-in")
		return
	}

	payload := gin.H{
		"check_in": out.CheckIn,
		"streak": gin.H{
			"count":         out.Streak.Count,
			"last_check_in": out.Streak.LastCheckIn,
			"plant_level":   out.Streak.PlantLevel,
		},
		"tokens_awarded": nil,
	}
	if out.Award != nil {
		payload["tokens_awarded"] = gin.H{
			"amount":      out.Award.Amount,
			"reason":      out.Award.Reason,
			"new_balance": out.Award.NewBalance,
		}
	}
	utils.Success(ctx, payload)
}

// History returns the user's check-ins newest first, paginated.
func (m *MoodController) History(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	items, total, err := m.checkin.History(userID, page, pageSize)
	if err != nil {
		utils.Sugar.Errorf("history query failed for user %d: %v", userID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to fetch mood history")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      items,
		"pagination": paginationMeta(page, pageSize, total),
	})
}
