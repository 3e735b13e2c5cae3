// Package api exposes document assembly over HTTP.
package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/docsmith/docsmith/internal/assembly"
	"github.com/docsmith/docsmith/internal/logger"
)

var log = logger.ForComponent("api")

// Setup builds the HTTP router over the assembly service.
func Setup(svc *assembly.Service) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
	}))

	h := NewHandler(svc)

	r.GET("/health", h.Health)

	api := r.Group("/api")
	{
		api.GET("/templates", h.ListTemplates)
		api.GET("/templates/:name", h.TemplateInfo)
		api.GET("/templates/:name/slides", h.SlideTypes)
		api.POST("/generate", h.Generate)
		api.GET("/download/:filename", h.Download)
	}

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.Info("request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status())
	}
}
