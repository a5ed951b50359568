package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jaki95/dj-transition/config"
	"github.com/jaki95/dj-transition/internal/domain"
	"github.com/jaki95/dj-transition/internal/progress"
)

// RequestIDHeader carries the per-request identifier on every response.
const RequestIDHeader = "X-Request-ID"

// Renderer produces a rendered WAV for a mix request.
type Renderer interface {
	Render(ctx context.Context, req domain.MixRequest, tracker *progress.Tracker) ([]byte, error)
}

// Server handles HTTP requests for transition planning and offline mixing
type Server struct {
	cfg      *config.Config
	router   *gin.Engine
	renderer Renderer
}

// New creates a new HTTP server instance
func New(cfg *config.Config, renderer Renderer) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		cfg:      cfg,
		router:   router,
		renderer: renderer,
	}
	s.setupRoutes(router)
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes(router *gin.Engine) {
	router.Use(requestID(), requestLogger(), cors(s.cfg.Server.AllowedOrigin))

	router.GET("/health", s.health)
	router.POST("/plan-transition", s.planTransition)
	router.POST("/offline-mix", s.offlineMix)
}

// Start starts the HTTP server
func (s *Server) Start(port string) error {
	return s.router.Run(":" + port)
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set("requestID", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.Info("Handled request",
			"requestId", c.GetString("requestID"),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// cors allows a single origin with credentials. Preflight requests are
// answered directly.
func cors(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")

		headers := c.GetHeader("Access-Control-Request-Headers")
		if headers == "" {
			headers = "*"
		}
		c.Header("Access-Control-Allow-Headers", headers)
		c.Header("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
