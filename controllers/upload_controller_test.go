package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mindgarden/mindgarden/middleware"
	"github.com/mindgarden/mindgarden/models"
	"github.com/mindgarden/mindgarden/utils"
)

func newUploadRouter(db *gorm.DB, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	if utils.Sugar == nil {
		utils.Sugar = zap.NewNop().Sugar()
	}
	r := gin.New()
	r.Use(func(ctx *gin.Context) {
		ctx.Set(middleware.ContextUserIDKey, userID)
		ctx.Next()
	})
	r.POST("/api/v1/upload", NewUploadController(db).Upload)
	return r
}

func TestUploadRecordsFile(t *testing.T) {
	db := newTestDB(t)
	if err := db.AutoMigrate(&models.UploadedFile{}); err != nil {
		t.Fatalf("migrate uploads: %v", err)
	}
	user := models.User{Username: "daisy"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	r := newUploadRouter(db, user.ID)
	t.Cleanup(func() { _ = os.RemoveAll("static") })

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "note.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte("voice note placeholder")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	var data struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.URL == "" {
		t.Fatal("upload returned empty url")
	}

	// The expiry record is written by a best-effort goroutine using the
	// controller's database handle, so it lands even without the global
	// connection initialized. Wait briefly for it.
	var count int64
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		db.Model(&models.UploadedFile{}).Where("url = ?", data.URL).Count(&count)
		if count == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if count != 1 {
		t.Fatalf("uploaded file records = %d, want 1", count)
	}
}

func TestUploadRequiresFile(t *testing.T) {
	db := newTestDB(t)
	user := models.User{Username: "daisy"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	r := newUploadRouter(db, user.ID)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
