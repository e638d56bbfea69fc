package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Handler holds shared dependencies (store, gateway, config) for all route handlers.
type Handler struct {
	store         store
	entries       *entryGateway
	jwtSecret     []byte
	cookieSecure  bool
	loc           *time.Location   // default viewer zone
	now           func() time.Time // overridable for tests
	openAIBaseURL string           // Base URL for OpenAI API (overridable for tests)
	loginLimiter  *ipRateLimiter
}

func newHandler(s store, cfg config) *Handler {
	return &Handler{
		store:         s,
		entries:       newEntryGateway(s, cfg.Location),
		jwtSecret:     []byte(cfg.JWTSecret),
		cookieSecure:  cfg.CookieSecure,
		loc:           cfg.Location,
		now:           time.Now,
		openAIBaseURL: cfg.OpenAIBaseURL,
		loginLimiter:  newIPRateLimiter(cfg.LoginRatePerMinute),
	}
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// newRouter builds the gin engine with logging, recovery and metrics middleware.
func (h *Handler) newRouter() *gin.Engine {
	router := gin.New()
	router.SetTrustedProxies(nil)
	router.Use(gin.Recovery(), requestLogger(), instrumentRequests())
	h.registerRoutes(router)
	return router
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	router.GET("/healthz", h.healthz)
	router.GET("/metrics", metricsHandler())

	// Public routes
	router.POST("/api/login", h.loginLimiter.middleware(), h.login)
	router.POST("/api/logout", h.logout)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.GET("/me", h.getMe)
	api.GET("/entries", h.listEntries)
	api.POST("/entries", h.createEntry)
	api.PUT("/entries", h.updateEntries)
	api.DELETE("/entries", h.deleteEntries)
	api.GET("/entries/grouped", h.getGroupedEntries)
	api.POST("/entries/suggest", h.suggestEntry)

	admin := api.Group("/admin", requireAdmin())
	admin.GET("/dashboard", h.getAdminDashboard)
	admin.GET("/stats", h.getAdminStats)
	admin.GET("/users", h.getAdminUsers)
}

// healthz reports whether the store is reachable. GET /healthz.
func (h *Handler) healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.ping(ctx); err != nil {
		log.WithError(err).Warn("[healthz] store ping failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
