package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mindgarden/mindgarden/config"
	"github.com/mindgarden/mindgarden/controllers"
	"github.com/mindgarden/mindgarden/middleware"
	"github.com/mindgarden/mindgarden/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	ginLogPath := cfg.GinPath
	// Use application log level as reference
	gl, err := utils.NewRollingFileLogger(ginLogPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))

	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	moodController := controllers.NewMoodController(db)
	plantController := controllers.NewPlantController(db)
	tokenController := controllers.NewTokenController(db)
	communityController := controllers.NewCommunityController(db)
	suggestionController := controllers.NewSuggestionController()
	dashboardController := controllers.NewDashboardController(db)
	uploadController := controllers.NewUploadController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/oauth/:provider/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/:provider/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.POST("/mood/check-in", moodController.CheckIn)
	protected.GET("/mood/history", moodController.History)

	protected.GET("/plants/growth", plantController.Growth)

	protected.GET("/tokens", tokenController.Balance)
	protected.GET("/tokens/history", tokenController.History)

	protected.GET("/community/groups", communityController.ListGroups)
	protected.GET("/community/groups/:id", communityController.GetGroup)
	protected.POST("/community/groups", communityController.CreateGroup)
	protected.POST("/community/groups/:id/join", communityController.JoinGroup)
	protected.POST("/community/groups/:id/leave", communityController.LeaveGroup)
	protected.GET("/community/groups/:id/messages", communityController.ListMessages)
	protected.POST("/community/groups/:id/messages", communityController.PostMessage)
	protected.POST("/community/seed", communityController.SeedGroups)

	protected.POST("/suggestions", suggestionController.Generate)

	protected.GET("/dashboard/summary", dashboardController.Summary)

	protected.POST("/upload", uploadController.Upload)

	r.NoRoute(func(ctx *gin.Context) {
		path := ctx.Request.URL.Path
		if strings.HasPrefix(path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r
}
