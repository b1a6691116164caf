package handler

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds the HTTP middleware settings.
type RouterConfig struct {
	AllowedOrigins  []string
	RateLimitPerSec float64
	RateLimitBurst  int
}

// NewEngine builds the gin engine with all intake routes mounted.
func (h *Handler) NewEngine(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	router.Use(cors.New(corsConfig))
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/ws"})))

	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	if cfg.RateLimitPerSec > 0 {
		api.Use(NewLimiter(cfg.RateLimitPerSec, cfg.RateLimitBurst).Middleware())
	}

	api.POST("/reports", h.Auth.Authenticate(false), h.SubmitReport)

	authed := api.Group("", h.Auth.Authenticate(true))
	authed.GET("/reports/:id", h.GetReport)
	authed.POST("/reports/:id/transition", h.TransitionReport)
	authed.GET("/citizens/:id/trust", h.GetCitizenTrust)

	staff := authed.Group("", RequireStaff())
	staff.GET("/reports", h.ListReports)
	staff.GET("/reports/:id/adjustments", h.ListAdjustments)

	router.GET("/ws", h.Auth.Authenticate(true), RequireStaff(), h.ServeFeed)

	return router
}
