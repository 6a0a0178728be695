package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"engagehub/internal/core"
	"engagehub/internal/repository"
	"engagehub/pkg/config"
	"engagehub/pkg/logger"
	"engagehub/pkg/utils"
)

// Services bundles the engagement services exposed over HTTP
type Services struct {
	Comments      core.CommentService
	Reactions     core.ReactionService
	Highlights    core.HighlightService
	Feedback      core.FeedbackService
	Notifications core.NotificationService
	Metrics       core.MetricsService
}

// NewServices wires every engagement service against one store
func NewServices(store repository.Store, opts ...core.Option) Services {
	return Services{
		Comments:      core.NewCommentService(store, opts...),
		Reactions:     core.NewReactionService(store, opts...),
		Highlights:    core.NewHighlightService(store, opts...),
		Feedback:      core.NewFeedbackService(store, opts...),
		Notifications: core.NewNotificationService(store, opts...),
		Metrics:       core.NewMetricsService(store, opts...),
	}
}

// Server manages HTTP REST API server
type Server struct {
	router   *gin.Engine
	config   *config.Config
	store    repository.Store
	svc      Services
	registry *prometheus.Registry
	httpSrv  *http.Server
}

// NewServer creates a new HTTP server with all handlers
func NewServer(cfg *config.Config, store repository.Store, svc Services) *Server {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	registry := newRegistry()

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(requestLogger())
	router.Use(prometheusMiddleware(registry))
	router.Use(corsMiddleware())

	s := &Server{
		router:   router,
		config:   cfg,
		store:    store,
		svc:      svc,
		registry: registry,
	}

	s.setupRoutes()
	return s
}

// setupRoutes registers all HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", metricsHandler(s.registry))

	v1 := s.router.Group("/api/v1", RateLimitMiddleware(s.config.RateLimit))
	v1.Use(IdentityMiddleware(s.config.Identity))
	{
		// Public reads
		v1.GET("/posts/:post_id/comments", s.listComments)
		v1.GET("/comments/:comment_id", s.getComment)
		v1.GET("/posts/:post_id/reactions", s.listPostReactions)
		v1.GET("/comments/:comment_id/reactions", s.listCommentReactions)
		v1.GET("/posts/:post_id/highlights", s.listHighlights)
		v1.GET("/posts/:post_id/metrics", s.getMetrics)

		protected := v1.Group("", RequireActor())
		{
			protected.POST("/posts/:post_id/comments", s.createComment)
			protected.PUT("/comments/:comment_id", s.updateComment)
			protected.DELETE("/comments/:comment_id", s.deleteComment)

			protected.GET("/comments/:comment_id/moderation", s.getCommentForModeration)
			protected.POST("/comments/:comment_id/moderation", s.moderateComment)
			protected.GET("/posts/:post_id/moderation-queue", s.moderationQueue)

			protected.PUT("/comments/:comment_id/reaction", s.setCommentReaction)
			protected.DELETE("/comments/:comment_id/reaction", s.removeCommentReaction)
			protected.PUT("/posts/:post_id/reaction", s.setPostReaction)
			protected.DELETE("/posts/:post_id/reaction", s.removePostReaction)

			protected.POST("/posts/:post_id/highlights", s.createHighlight)

			protected.PUT("/posts/:post_id/feedback", s.submitFeedback)
			protected.GET("/posts/:post_id/feedback", s.getFeedback)

			protected.GET("/notifications", s.listNotifications)
			protected.GET("/notifications/unread-count", s.unreadCount)
			protected.POST("/notifications/:id/read", s.markNotificationRead)
			protected.POST("/notifications/read-all", s.markAllNotificationsRead)

			protected.POST("/posts/:post_id/metrics/refresh", s.refreshMetrics)
			protected.POST("/posts/:post_id/views", s.recordView)
			protected.POST("/posts/:post_id/shares", s.recordShare)
		}
	}
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start(addr string) error {
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Infof("HTTP server listening on %s", addr)
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Router returns the gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-ID, X-User-Name, X-User-Avatar, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// healthCheck reports whether the store is reachable
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := utils.WithTimeout(c.Request.Context())
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		logger.Warnf("health check failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"time":   time.Now().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}
