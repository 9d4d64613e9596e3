// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/fiachehr/go-eav/internal/config"
	"github.com/fiachehr/go-eav/internal/handlers"
	"github.com/fiachehr/go-eav/internal/middleware"
	"github.com/fiachehr/go-eav/internal/services"
	"github.com/fiachehr/go-eav/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	resolver := services.NewAttributeResolverFromConfig(db, cfg.EAV)
	attributeService := services.NewAttributeService(db, resolver)
	groupService := services.NewGroupService(db)
	valueService := services.NewValueService(db, resolver)
	translationService := services.NewTranslationService(db)

	fileService, err := services.NewFileService(cfg)
	if err != nil {
		logrus.WithError(err).Warn("S3 client unavailable, falling back to local file storage")
		localCfg := *cfg
		localCfg.AWS.AccessKeyID = ""
		fileService, _ = services.NewFileService(&localCfg)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg)
	attributeHandler := handlers.NewAttributeHandler(attributeService)
	groupHandler := handlers.NewGroupHandler(groupService)
	valueHandler := handlers.NewValueHandler(valueService, fileService, resolver)
	translationHandler := handlers.NewTranslationHandler(translationService)
	searchHandler := handlers.NewSearchHandler(db, resolver)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.CORS())
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Token minting for local development; real deployments take tokens
		// from an external identity provider.
		if cfg.Environment != "production" {
			v1.POST("/auth/dev-token", authHandler.DevToken)
		}

		// Attribute catalog routes
		attributes := v1.Group("/attributes")
		{
			attributes.GET("", attributeHandler.GetAttributes)
			attributes.GET("/types", attributeHandler.GetAttributeTypes)
			attributes.GET("/:id", attributeHandler.GetAttribute)
			attributes.GET("/slug/:slug", attributeHandler.GetAttributeBySlug)

			// Admin routes
			protected := attributes.Group("")
			protected.Use(middleware.AuthRequired(), middleware.AdminRequired())
			{
				protected.POST("", attributeHandler.CreateAttribute)
				protected.PUT("/:id", attributeHandler.UpdateAttribute)
				protected.DELETE("/:id", attributeHandler.DeleteAttribute)
			}
		}

		// Attribute group routes
		groups := v1.Group("/attribute-groups")
		{
			groups.GET("", groupHandler.GetGroups)
			groups.GET("/:id", groupHandler.GetGroup)

			// Admin routes
			protected := groups.Group("")
			protected.Use(middleware.AuthRequired(), middleware.AdminRequired())
			{
				protected.POST("", groupHandler.CreateGroup)
				protected.PUT("/:id", groupHandler.UpdateGroup)
				protected.DELETE("/:id", groupHandler.DeleteGroup)
				protected.PUT("/:id/attributes", groupHandler.SyncAttributes)
				protected.POST("/:id/attach", groupHandler.AttachToEntity)
				protected.POST("/:id/detach", groupHandler.DetachFromEntity)
			}
		}

		// Entity attribute value routes
		entities := v1.Group("/entities/:entity_type/:entity_id")
		entities.Use(middleware.AuthRequired())
		{
			entities.GET("/attributes", valueHandler.GetValues)
			entities.PUT("/attributes", valueHandler.SetValues)
			entities.DELETE("/attributes", valueHandler.ClearValues)
			entities.POST("/attributes/sync", valueHandler.SyncValues)
			entities.GET("/attributes/:slug", valueHandler.GetValue)
			entities.PUT("/attributes/:slug", valueHandler.SetValue)
			entities.DELETE("/attributes/:slug", valueHandler.RemoveValue)
			entities.POST("/attributes/:slug/upload", middleware.UploadRateLimit(), valueHandler.UploadFileValue)
			entities.GET("/attributes/:slug/download", valueHandler.DownloadFileValue)
		}

		// Catalog translation routes
		translations := v1.Group("/translations/:owner_type/:owner_id")
		{
			translations.GET("", translationHandler.GetAll)

			protected := translations.Group("")
			protected.Use(middleware.AuthRequired(), middleware.AdminRequired())
			{
				protected.PUT("", translationHandler.Set)
				protected.DELETE("/:locale/:key", translationHandler.Delete)
			}
		}

		// Search routes
		search := v1.Group("/search")
		search.Use(middleware.OptionalAuth())
		{
			search.POST("/entities", searchHandler.SearchEntities)
			search.POST("/aggregate", searchHandler.Aggregate)
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
