package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/hamzaummer/Optical-Character-Recognition-OCR-Web-Application/internal/server/middleware"
)

// OCRHandler defines the interface for the OCR handler.
type OCRHandler interface {
	Index(c *gin.Context)
	Upload(c *gin.Context)
	DownloadText(c *gin.Context)
	Languages(c *gin.Context)
	Health(c *gin.Context)
}

// New wires up handlers to the Gin engine.
func New(apiKey string, ocrHandler OCRHandler, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.AccessLog(logger),
		middleware.Recovery(logger),
	)

	// Health checks (no API key)
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/health", ocrHandler.Health)

	register(r.Group("/", middleware.WithAPIKey(apiKey)), ocrHandler)

	// API v1 group
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", ocrHandler.Health)
		register(v1.Group("", middleware.WithAPIKey(apiKey)), ocrHandler)
	}

	return r
}

func register(g *gin.RouterGroup, h OCRHandler) {
	g.GET("/", h.Index)
	g.POST("/upload", h.Upload)
	g.POST("/download_text", h.DownloadText)
	g.GET("/languages", h.Languages)
}
