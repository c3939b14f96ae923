package router

import (
	"time"

	"github.com/promoagente/promoagente-backend/internal/handlers"
	"github.com/promoagente/promoagente-backend/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Chat    *handlers.ChatHandler
	Session *handlers.SessionHandler
	Export  *handlers.ExportHandler
}

// SetupRouter configures the Gin router with the conversation API routes
func SetupRouter(h Handlers) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	logrus.Info("Swagger UI endpoint registered at /swagger/index.html")

	// API v1 routes
	api := r.Group("/api/v1")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
				"time":   time.Now().Format(time.RFC3339),
			})
		})

		protected := api.Group("")
		protected.Use(middleware.APIKeyAuth())
		{
			protected.POST("/chat", h.Chat.HandleChat)

			protected.GET("/sessions/:sessionid", h.Session.GetSession)
			protected.DELETE("/sessions/:sessionid", h.Session.DeleteSession)

			protected.GET("/promotions", h.Session.GetPromotions)

			protected.GET("/export/:filename", h.Export.DownloadExport)
		}
	}

	return r
}
