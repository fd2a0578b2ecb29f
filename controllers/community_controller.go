package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mindgarden/mindgarden/models"
	"github.com/mindgarden/mindgarden/utils"
)

// CommunityController manages support groups and their chat messages.
type CommunityController struct {
	db *gorm.DB
}

// NewCommunityController creates a CommunityController instance.
func NewCommunityController(db *gorm.DB) *CommunityController {
	return &CommunityController{db: db}
}

var validGroupCategories = []string{"support", "wellness", "students", "positivity", "general"}

// ListGroups returns all community groups newest first.
func (c *CommunityController) ListGroups(ctx *gin.Context) {
	const cacheKey = "cache:community:groups"
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var groups []models.Group
	if err := c.db.Preload("Members").Order("created_at DESC").Find(&groups).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to fetch community groups")
		return
	}

	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: gin.H{"items": groups}}
	utils.CacheSetJSON(cacheKey, wrapper, 5*time.Minute)
	utils.Success(ctx, gin.H{"items": groups})
}

// GetGroup returns a single group with its members.
func (c *CommunityController) GetGroup(ctx *gin.Context) {
	var group models.Group
	if err := c.db.Preload("Members").First(&group, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "group not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50091, "failed to fetch group")
		return
	}
	utils.Success(ctx, group)
}

// CreateGroup creates a new support group with the caller as first member.
func (c *CommunityController) CreateGroup(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required,min=1,max=128"`
		Description string `json:"description" binding:"required"`
		Category    string `json:"category" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40090, "please provide all required fields")
		return
	}
	if !validGroupCategory(req.Category) {
		utils.Error(ctx, http.StatusBadRequest, 40091, "invalid category")
		return
	}

	var creator models.User
	if err := c.db.First(&creator, userID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50092, "failed to load user")
		return
	}

	group := models.Group{
		Name:        utils.Sanitize(strings.TrimSpace(req.Name)),
		Description: utils.Sanitize(strings.TrimSpace(req.Description)),
		Category:    req.Category,
		Members:     []models.User{creator},
	}
	if err := c.db.Create(&group).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50093, "failed to create group")
		return
	}

	utils.InvalidateByPrefix("cache:community:")
	utils.Respond(ctx, http.StatusCreated, 0, "success", group)
}

// JoinGroup adds the caller to a group's member list.
func (c *CommunityController) JoinGroup(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	group, err := c.loadGroup(ctx)
	if err != nil {
		return
	}

	if c.isMember(group.ID, userID) {
		utils.Error(ctx, http.StatusBadRequest, 40092, "already a member of this group")
		return
	}

	var user models.User
	if err := c.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50092, "failed to load user")
		return
	}
	if err := c.db.Model(group).Association("Members").Append(&user); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50094, "failed to join group")
		return
	}

	utils.InvalidateByPrefix("cache:community:")
	utils.Success(ctx, gin.H{"message": "joined group", "group_id": group.ID})
}

// LeaveGroup removes the caller from a group's member list.
func (c *CommunityController) LeaveGroup(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	group, err := c.loadGroup(ctx)
	if err != nil {
		return
	}

	if !c.isMember(group.ID, userID) {
		utils.Error(ctx, http.StatusBadRequest, 40093, "not a member of this group")
		return
	}

	if err := c.db.Model(group).Association("Members").Delete(&models.User{ID: userID}); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50095, "failed to leave group")
		return
	}

	utils.InvalidateByPrefix("cache:community:")
	utils.Success(ctx, gin.H{"message": "left group", "group_id": group.ID})
}

// PostMessage appends a chat message to a group the caller belongs to.
func (c *CommunityController) PostMessage(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40094, "message content is required")
		return
	}

	group, err := c.loadGroup(ctx)
	if err != nil {
		return
	}

	if !c.isMember(group.ID, userID) {
		utils.Error(ctx, http.StatusForbidden, 40301, "must be a member to post messages")
		return
	}

	message := models.GroupMessage{
		GroupID: group.ID,
		UserID:  userID,
		Content: utils.Sanitize(strings.TrimSpace(req.Content)),
	}
	if message.Content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40094, "message content is required")
		return
	}
	if err := c.db.Create(&message).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50096, "failed to post message")
		return
	}

	if err := c.db.Preload("User").First(&message, message.ID).Error; err == nil {
		utils.Success(ctx, message)
		return
	}
	utils.Success(ctx, message)
}

// ListMessages returns a group's messages newest first, paginated.
func (c *CommunityController) ListMessages(ctx *gin.Context) {
	group, err := c.loadGroup(ctx)
	if err != nil {
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var messages []models.GroupMessage
	var total int64
	query := c.db.Model(&models.GroupMessage{}).Where("group_id = ?", group.ID)
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50097, "failed to count messages")
		return
	}
	if err := query.Preload("User").Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&messages).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50098, "failed to fetch messages")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      messages,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// SeedGroups creates the initial set of groups. Restricted to admins and
// refused once any group exists.
func (c *CommunityController) SeedGroups(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40302, "admin access required")
		return
	}

	var existing int64
	if err := c.db.Model(&models.Group{}).Count(&existing).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50099, "failed to count groups")
		return
	}
	if existing > 0 {
		utils.Error(ctx, http.StatusBadRequest, 40095, "community groups already exist")
		return
	}

	var creator models.User
	if err := c.db.First(&creator, userID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50092, "failed to load user")
		return
	}

	seeds := []models.Group{
		{
			Name:        "Anxiety Support",
			Description: "A safe space to share experiences and coping strategies for anxiety.",
			Category:    "support",
		},
		{
			Name:        "Mindfulness Practice",
			Description: "Group dedicated to sharing mindfulness techniques and daily practices.",
			Category:    "wellness",
		},
		{
			Name:        "Student Mental Health",
			Description: "Support group for students dealing with academic stress and pressure.",
			Category:    "students",
		},
		{
			Name:        "Mood Boosters",
			Description: "Share positive experiences, achievements, and things that lift your mood.",
			Category:    "positivity",
		},
		{
			Name:        "Sleep Better",
			Description: "Discussion group for improving sleep quality and addressing sleep issues.",
			Category:    "wellness",
		},
	}
	for i := range seeds {
		seeds[i].Members = []models.User{creator}
	}
	if err := c.db.Create(&seeds).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50100, "failed to seed groups")
		return
	}

	utils.InvalidateByPrefix("cache:community:")
	utils.Success(ctx, gin.H{"items": seeds})
}

func (c *CommunityController) loadGroup(ctx *gin.Context) (*models.Group, error) {
	var group models.Group
	if err := c.db.First(&group, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "group not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50091, "failed to fetch group")
		}
		return nil, err
	}
	return &group, nil
}

func (c *CommunityController) isMember(groupID, userID uint) bool {
	var count int64
	c.db.Table("group_members").
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count)
	return count > 0
}

func validGroupCategory(category string) bool {
	for _, v := range validGroupCategories {
		if category == v {
			return true
		}
	}
	return false
}
