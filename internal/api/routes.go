package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"resumesmith/internal/api/middleware"
	"resumesmith/internal/auth"
	"resumesmith/internal/config"
	"resumesmith/internal/storage"
)

// RegisterRoutes 注册 API 路由，不包含 /api 前缀。
func RegisterRoutes(
	router *gin.Engine,
	cfg *config.Config,
	db *gorm.DB,
	asynqClient *asynq.Client,
	authService *auth.AuthService,
	redisClient *redis.Client,
	logger *slog.Logger,
	storageClient *storage.Client,
) {
	authHandler := NewAuthHandler(
		db, authService, redisClient, logger,
		cfg.Auth.LoginRateLimitPerHour,
		cfg.Auth.LoginLockThreshold,
		cfg.Auth.LoginLockTTL,
		cfg.API.CookieDomain,
	)
	resumeHandler := NewResumeHandler(db, asynqClient, storageClient, redisClient, cfg.Limits.MaxResumes, cfg.Limits.ExportsPerDay)
	sectionHandler := NewSectionHandler(db)
	templateHandler := NewTemplateHandler(db, storageClient)
	photoHandler := NewPhotoHandler(
		db, storageClient, redisClient, logger,
		cfg.Clamd.Addr,
		int64(cfg.Limits.MaxPhotoBytes),
		cfg.Limits.MaxPhotosPerUser,
		cfg.Limits.PhotoUploadsDay,
	)
	notifyHandler := NewNotifyHandler(redisClient, authService, logger, cfg.API.AllowedOrigins)

	authMiddleware := middleware.AuthMiddleware(authService)
	passwordGate := middleware.RequirePasswordChangeCompletedMiddleware()

	v1 := router.Group("/v1")
	{
		v1.GET("/ws", notifyHandler.HandleConnection)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/change-password", authMiddleware, authHandler.ChangePassword)
			authGroup.POST("/logout", authMiddleware, authHandler.Logout)
		}

		// 模板目录是静态数据，详情里的缩略图链接需要登录才签发。
		templateGroup := v1.Group("/templates")
		templateGroup.Use(authMiddleware, passwordGate)
		{
			templateGroup.GET("", templateHandler.ListTemplates)
			templateGroup.GET("/families", templateHandler.ListFamilies)
			templateGroup.GET("/:id", templateHandler.GetTemplate)
		}

		resumeGroup := v1.Group("/resumes")
		resumeGroup.Use(authMiddleware, passwordGate)
		{
			resumeGroup.GET("", resumeHandler.ListResumes)
			resumeGroup.POST("", resumeHandler.CreateResume)
			resumeGroup.GET("/latest", resumeHandler.GetLatestResume)
			resumeGroup.POST("/validate", resumeHandler.ValidateResumeContent)
			resumeGroup.GET("/:id", resumeHandler.GetResume)
			resumeGroup.PUT("/:id", resumeHandler.UpdateResume)
			resumeGroup.DELETE("/:id", resumeHandler.DeleteResume)

			resumeGroup.GET("/:id/preview", templateHandler.PreviewResume)
			resumeGroup.POST("/:id/export/pdf", resumeHandler.ExportResumePDF)
			resumeGroup.POST("/:id/export/docx", resumeHandler.ExportResumeDocx)
			resumeGroup.GET("/:id/download-link", resumeHandler.GetDownloadLink)

			resumeGroup.GET("/:id/sections", sectionHandler.ListSections)
			resumeGroup.POST("/:id/sections", sectionHandler.AddSection)
			resumeGroup.DELETE("/:id/sections/:key", sectionHandler.RemoveSection)
			resumeGroup.POST("/:id/sections/:key/move", sectionHandler.MoveSection)
			resumeGroup.POST("/:id/sections/:key/toggle", sectionHandler.ToggleSection)
		}

		photoGroup := v1.Group("/photos")
		photoGroup.Use(authMiddleware, passwordGate)
		{
			photoGroup.POST("/upload", photoHandler.UploadPhoto)
			photoGroup.GET("", photoHandler.ListPhotos)
			photoGroup.GET("/view", photoHandler.GetPhotoURL)
			photoGroup.DELETE("", photoHandler.DeletePhoto)
		}
	}
}
