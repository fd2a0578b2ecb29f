package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mindgarden/mindgarden/middleware"
	"github.com/mindgarden/mindgarden/models"
	"github.com/mindgarden/mindgarden/utils"
)

func newCommunityRouter(db *gorm.DB, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	if utils.Sugar == nil {
		utils.Sugar = zap.NewNop().Sugar()
	}
	r := gin.New()
	r.Use(func(ctx *gin.Context) {
		ctx.Set(middleware.ContextUserIDKey, userID)
		ctx.Next()
	})
	community := NewCommunityController(db)
	r.POST("/api/v1/community/groups", community.CreateGroup)
	r.POST("/api/v1/community/groups/:id/join", community.JoinGroup)
	r.POST("/api/v1/community/groups/:id/leave", community.LeaveGroup)
	r.POST("/api/v1/community/groups/:id/messages", community.PostMessage)
	r.GET("/api/v1/community/groups/:id/messages", community.ListMessages)
	return r
}

func newCommunityDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := newTestDB(t)
	if err := db.AutoMigrate(&models.Group{}, &models.GroupMessage{}); err != nil {
		t.Fatalf("migrate groups: %v", err)
	}
	return db
}

func TestGroupMembershipRules(t *testing.T) {
	db := newCommunityDB(t)
	creator := models.User{Username: "daisy"}
	other := models.User{Username: "rowan"}
	if err := db.Create(&creator).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	r := newCommunityRouter(db, creator.ID)
	w, env := doJSON(t, r, http.MethodPost, "/api/v1/community/groups", gin.H{
		"name":        "Evening Wind-down",
		"description": "Share what helps you settle before sleep.",
		"category":    "wellness",
	})
	if w.Code != http.StatusCreated || env.Code != 0 {
		t.Fatalf("create group status=%d code=%d body=%s", w.Code, env.Code, w.Body.String())
	}

	// The creator is already a member.
	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/community/groups/1/join", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("rejoin status = %d, want 400", w.Code)
	}

	// A non-member cannot post.
	rOther := newCommunityRouter(db, other.ID)
	w, _ = doJSON(t, rOther, http.MethodPost, "/api/v1/community/groups/1/messages", gin.H{
		"content": "hello",
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("non-member post status = %d, want 403", w.Code)
	}

	// Leaving without joining fails.
	w, _ = doJSON(t, rOther, http.MethodPost, "/api/v1/community/groups/1/leave", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("leave without joining status = %d, want 400", w.Code)
	}

	// Join, post, then the message shows up in the listing.
	w, _ = doJSON(t, rOther, http.MethodPost, "/api/v1/community/groups/1/join", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("join status = %d, want 200", w.Code)
	}
	w, _ = doJSON(t, rOther, http.MethodPost, "/api/v1/community/groups/1/messages", gin.H{
		"content": "hello everyone",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("member post status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}

	w, env = doJSON(t, r, http.MethodGet, "/api/v1/community/groups/1/messages", nil)
	if w.Code != http.StatusOK || env.Code != 0 {
		t.Fatalf("list messages status=%d code=%d", w.Code, env.Code)
	}

	var count int64
	db.Model(&models.GroupMessage{}).Where("group_id = ?", 1).Count(&count)
	if count != 1 {
		t.Errorf("messages stored = %d, want 1", count)
	}
}

func TestCreateGroupValidation(t *testing.T) {
	db := newCommunityDB(t)
	user := models.User{Username: "daisy"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	r := newCommunityRouter(db, user.ID)

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing name", gin.H{"description": "d", "category": "wellness"}},
		{"missing description", gin.H{"name": "n", "category": "wellness"}},
		{"bad category", gin.H{"name": "n", "description": "d", "category": "sports"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, _ := doJSON(t, r, http.MethodPost, "/api/v1/community/groups", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}
