package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"civicfix/internal/config"
	"civicfix/internal/delivery/http/handler"
	domainUser "civicfix/internal/domain/user"
	"civicfix/internal/geo"
	"civicfix/internal/infrastructure/database/postgres"
	"civicfix/internal/infrastructure/storage"
	"civicfix/internal/logger"
	"civicfix/internal/middleware"
	"civicfix/internal/usecase/issue"
	"civicfix/internal/usecase/media"
	"civicfix/internal/usecase/search"
	"civicfix/internal/usecase/user"
)

func SetupRoutes(cfg *config.Config, db *postgres.DB, geoIndex *geo.Index, store storage.ObjectStorage) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware in order: recovery, request ID, logging, security headers,
	// CORS, request size limit, general rate limit.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	userRepository := postgres.NewUserRepository(db)
	userService := user.NewService(userRepository, cfg)
	userHandler := handler.NewUserHandler(userService)

	issueRepository := postgres.NewIssueRepository(db)
	issueService := issue.NewService(issueRepository, geoIndex)
	issueHandler := handler.NewIssueHandler(issueService)

	searchService := search.NewService(issueRepository, geoIndex)
	searchHandler := handler.NewSearchHandler(searchService)

	mediaService := media.NewService(store)
	mediaHandler := handler.NewMediaHandler(mediaService)

	v1 := router.Group("/api/v1")
	{
		userHandler.RegisterRoutes(v1)

		// Public reads resolve a principal when a token is presented so
		// authors still see their own flagged issues.
		public := v1.Group("")
		public.Use(middleware.OptionalAuthMiddleware(cfg))
		{
			searchHandler.RegisterRoutes(public)
			issueHandler.RegisterPublicRoutes(public)
		}

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			userHandler.RegisterProfileRoutes(protected)
			issueHandler.RegisterRoutes(protected)
			mediaHandler.RegisterRoutes(protected)

			moderator := protected.Group("")
			moderator.Use(middleware.RoleMiddleware(domainUser.RoleModerator))
			{
				issueHandler.RegisterModeratorRoutes(moderator)
			}

			admin := protected.Group("/admin")
			admin.Use(middleware.ModeratorOnly())
			{
				userHandler.RegisterModeratorRoutes(admin)
			}
		}
	}

	logger.Info("All routes initialized")
	return router
}
