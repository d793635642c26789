package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dailypost/dailypost/auth"
	"github.com/dailypost/dailypost/config"
	"github.com/dailypost/dailypost/controllers"
	"github.com/dailypost/dailypost/middleware"
	"github.com/dailypost/dailypost/store"
	"github.com/dailypost/dailypost/utils"
)

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	Posts store.Posts
	Auth  auth.Authenticator
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(deps Dependencies) *gin.Engine {
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
	r.Use(middleware.RequestID())
	// Request log goes to its own rolling file
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, true))
	} else {
		utils.Sugar.Warnf("gin log file unavailable, using default recovery: %v", err)
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "X-Total-Count", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Static(utils.UploadURLPrefix, cfg.UploadDir)

	var cacheTTL time.Duration
	if cfg.CacheEnabled {
		cacheTTL = time.Duration(cfg.CacheTTLSeconds) * time.Second
	}
	maxUpload := int64(cfg.MaxUploadMB) << 20

	postController := controllers.NewPostController(deps.Posts, cfg.UploadDir, maxUpload, cacheTTL)
	authController := controllers.NewAuthController(deps.Auth, time.Duration(cfg.JWTTTLHours)*time.Hour)
	statsController := controllers.NewStatsController(deps.Posts)
	configController := controllers.NewConfigController()

	api := r.Group("/api")

	api.GET("/health", func(ctx *gin.Context) {
		utils.SuccessMessage(ctx, http.StatusOK, "Daily Post API is running", gin.H{"status": "ok"})
	})
	api.GET("/stats", statsController.GetStats)
	api.GET("/config/categories", configController.GetCategories)
	api.GET("/config/uploads", configController.GetUploads)

	postsGroup := api.Group("/posts")
	postsGroup.GET("", postController.ListPosts)
	postsGroup.GET("/:id", postController.GetPost)

	admin := api.Group("/admin")
	admin.POST("/login", middleware.RateLimitMiddleware(), authController.Login)
	admin.POST("/logout", middleware.AdminRequired(), authController.Logout)
	admin.GET("/me", middleware.AdminRequired(), authController.Me)

	protected := api.Group("/posts")
	protected.Use(middleware.AdminRequired())
	protected.POST("", postController.CreatePost)
	protected.POST("/upload", postController.UploadImage)
	protected.PUT("/:id", postController.UpdatePost)
	protected.DELETE("/:id", postController.DeletePost)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, "api route not found")
			return
		}
		utils.Error(ctx, http.StatusNotFound, "not found")
	})

	return r
}
