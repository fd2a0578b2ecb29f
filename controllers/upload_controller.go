package controllers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mindgarden/mindgarden/config"
	"github.com/mindgarden/mindgarden/models"
	"github.com/mindgarden/mindgarden/utils"
)

// UploadController stores user uploads such as avatars and voice notes under
// dated directories and records them for timed cleanup.
type UploadController struct {
	db *gorm.DB
}

// NewUploadController creates an UploadController instance.
func NewUploadController(db *gorm.DB) *UploadController {
	return &UploadController{db: db}
}

// Upload saves a multipart file and returns its public URL.
func (u *UploadController) Upload(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40113, "unauthorized")
		return
	}

	// Accept common field name 'file' or fallback to 'f'
	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		file, header, err = ctx.Request.FormFile("f")
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40030, "no file uploaded")
			return
		}
	}
	defer file.Close()

	const maxSize = 50 * 1024 * 1024
	if header.Size > 0 && header.Size > maxSize {
		utils.Error(ctx, http.StatusBadRequest, 40032, "file size exceeds 50MB")
		return
	}

	now := time.Now()
	year := now.Format("2006")
	month := now.Format("01")
	day := now.Format("02")
	baseDir := filepath.Join(".", "static", "uploads", year, month, day)
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to create upload directory")
		return
	}

	// Sanitize filename and ensure uniqueness
	fname := filepath.Base(header.Filename)
	if fname == "." || fname == "" {
		fname = fmt.Sprintf("file_%d", now.UnixNano())
	}
	safeName := fmt.Sprintf("%d_%d_%s", now.UnixNano(), userID, fname)
	dstPath := filepath.Join(baseDir, safeName)

	out, err := os.Create(dstPath)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to save file")
		return
	}
	defer out.Close()

	// Enforce 50MB by limited reader
	lr := &io.LimitedReader{R: file, N: maxSize + 1}
	written, err := io.Copy(out, lr)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(dstPath)
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to write file")
		return
	}
	if written > maxSize {
		_ = out.Close()
		_ = os.Remove(dstPath)
		utils.Error(ctx, http.StatusBadRequest, 40032, "file size exceeds 50MB")
		return
	}

	relURL := fmt.Sprintf("/static/uploads/%s/%s/%s/%s", year, month, day, safeName)

	conf := config.Get()
	ttlMinutes := conf.UploadsSelfDestructMinutes
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	expireAt := time.Now().Add(time.Duration(ttlMinutes) * time.Minute)
	absPath, _ := filepath.Abs(dstPath)
	// Non-blocking best-effort record; ignore error to not affect upload success
	go func(db *gorm.DB, absPath, url string, exp time.Time) {
		defer func() { _ = recover() }()
		if db != nil {
			_ = db.Create(&models.UploadedFile{FilePath: absPath, URL: url, ExpireAt: exp}).Error
		}
	}(u.db, absPath, relURL, expireAt)

	// Also schedule in-memory fallback deletion if enabled
	if conf.UploadsSelfDestructEnabled {
		go func(path string, minutes int) {
			time.Sleep(time.Duration(minutes) * time.Minute)
			_ = os.Remove(path)
		}(absPath, ttlMinutes)
	}

	utils.Success(ctx, gin.H{"url": relURL})
}
