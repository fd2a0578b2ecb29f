package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mindgarden/mindgarden/models"
	"github.com/mindgarden/mindgarden/utils"
)

// TokenController exposes the token balance and earn history.
type TokenController struct {
	db *gorm.DB
}

// NewTokenController creates a TokenController instance.
func NewTokenController(db *gorm.DB) *TokenController {
	return &TokenController{db: db}
}

// Balance returns the user's current and lifetime token totals.
func (t *TokenController) Balance(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := t.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to load user")
		return
	}

	utils.Success(ctx, gin.H{
		"balance":    user.TokenBalance,
		"lifetime":   user.TokenLifetime,
		"updated_at": user.TokensUpdatedAt,
	})
}

// History returns the user's token ledger entries newest first, paginated.
func (t *TokenController) History(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var entries []models.TokenTransaction
	var total int64
	query := t.db.Model(&models.TokenTransaction{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to count transactions")
		return
	}
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to fetch transactions")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      entries,
		"pagination": paginationMeta(page, pageSize, total),
	})
}
