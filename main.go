package main

import (
	"time"

	"github.com/mindgarden/mindgarden/config"
	"github.com/mindgarden/mindgarden/models"
	"github.com/mindgarden/mindgarden/routes"
	"github.com/mindgarden/mindgarden/utils"
)

func main() {
	cfg := config.Load()
	config.MustValidate(cfg)

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.CheckIn{},
		&models.TokenTransaction{},
		&models.Group{},
		&models.GroupMessage{},
		&models.UploadedFile{},
	)

	r := routes.SetupRouter(db)

	// Start background cleanup for expired uploads (best-effort)
	utils.StartUploadCleaner(5 * time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
