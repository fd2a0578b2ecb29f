package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mindgarden/mindgarden/middleware"
	"github.com/mindgarden/mindgarden/models"
	"github.com/mindgarden/mindgarden/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	// A single connection keeps the in-memory database alive and shared.
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

// newMoodRouter builds a minimal engine with the authenticated user injected
// directly, bypassing JWT verification.
func newMoodRouter(db *gorm.DB, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	if utils.Sugar == nil {
		utils.Sugar = zap.NewNop().Sugar()
	}
	r := gin.New()
	r.Use(func(ctx *gin.Context) {
		ctx.Set(middleware.ContextUserIDKey, userID)
		ctx.Next()
	})
	mood := NewMoodController(db)
	r.POST("/api/v1/mood/check-in", mood.CheckIn)
	r.GET("/api/v1/mood/history", mood.History)
	return r
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return w, env
}

func TestCheckInEndpoint(t *testing.T) {
	db := newTestDB(t)
	user := models.User{Username: "daisy", Email: "daisy@example.com"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	r := newMoodRouter(db, user.ID)

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/mood/check-in", gin.H{
		"mood_score":   7,
		"energy_level": 6,
		"method":       "emoji",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if env.Code != 0 {
		t.Fatalf("envelope code = %d, want 0", env.Code)
	}

	var data struct {
		Streak struct {
			Count      int    `json:"count"`
			PlantLevel string `json:"plant_level"`
		} `json:"streak"`
		TokensAwarded *struct {
			Amount     int    `json:"amount"`
			Reason     string `json:"reason"`
			NewBalance int    `json:"new_balance"`
		} `json:"tokens_awarded"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Streak.Count != 1 {
		t.Errorf("streak count = %d, want 1", data.Streak.Count)
	}
	if data.Streak.PlantLevel != models.PlantSprout {
		t.Errorf("plant level = %q, want %q", data.Streak.PlantLevel, models.PlantSprout)
	}
	if data.TokensAwarded == nil {
		t.Fatal("tokens_awarded = nil, want first check-in award")
	}
	if data.TokensAwarded.Amount != 10 || data.TokensAwarded.NewBalance != 10 {
		t.Errorf("award = %+v, want amount 10 balance 10", data.TokensAwarded)
	}

	// Same-day repeat records the entry but awards nothing.
	w, env = doJSON(t, r, http.MethodPost, "/api/v1/mood/check-in", gin.H{
		"mood_score":   4,
		"energy_level": 5,
		"method":       "text",
		"text":         "long day",
	})
	if w.Code != http.StatusOK || env.Code != 0 {
		t.Fatalf("repeat check-in status=%d code=%d", w.Code, env.Code)
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.TokensAwarded != nil {
		t.Errorf("same-day award = %+v, want nil", data.TokensAwarded)
	}
	if data.Streak.Count != 1 {
		t.Errorf("same-day streak count = %d, want 1", data.Streak.Count)
	}
}

func TestCheckInEndpointValidation(t *testing.T) {
	db := newTestDB(t)
	user := models.User{Username: "daisy"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	r := newMoodRouter(db, user.ID)

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing method", gin.H{"mood_score": 5, "energy_level": 5}},
		{"mood out of range", gin.H{"mood_score": 11, "energy_level": 5, "method": "emoji"}},
		{"text method without text", gin.H{"mood_score": 5, "energy_level": 5, "method": "text"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, env := doJSON(t, r, http.MethodPost, "/api/v1/mood/check-in", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
			if env.Code == 0 {
				t.Error("envelope code = 0, want error code")
			}
		})
	}

	var count int64
	db.Model(&models.CheckIn{}).Count(&count)
	if count != 0 {
		t.Errorf("check-ins persisted = %d, want 0", count)
	}
}

func TestMoodHistoryEndpoint(t *testing.T) {
	db := newTestDB(t)
	user := models.User{Username: "daisy"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	r := newMoodRouter(db, user.ID)

	for i := 0; i < 3; i++ {
		w, _ := doJSON(t, r, http.MethodPost, "/api/v1/mood/check-in", gin.H{
			"mood_score":   5 + i,
			"energy_level": 5,
			"method":       "emoji",
		})
		if w.Code != http.StatusOK {
			t.Fatalf("check-in %d status = %d", i, w.Code)
		}
	}

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/mood/history?page=1&page_size=2", nil)
	if w.Code != http.StatusOK || env.Code != 0 {
		t.Fatalf("history status=%d code=%d", w.Code, env.Code)
	}

	var data struct {
		Items      []models.CheckIn `json:"items"`
		Pagination struct {
			Page     int   `json:"page"`
			PageSize int   `json:"page_size"`
			Total    int64 `json:"total"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(data.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(data.Items))
	}
	if data.Pagination.Total != 3 {
		t.Errorf("total = %d, want 3", data.Pagination.Total)
	}
	// Newest first
	if data.Items[0].MoodScore != 7 {
		t.Errorf("first item mood = %d, want 7", data.Items[0].MoodScore)
	}
}
