package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nekogravitycat/link-catalog-backend/internal/auth"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds what the router needs to assemble middleware and routes.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	JWTManager   *auth.JWTManager
	DB           Pinger
	Logger       *slog.Logger
	Modules      []Module
}

// NewRouter initializes the HTTP router engine.
// It assembles middleware (recovery, request logging, metrics, CORS), the
// unauthenticated operational endpoints, and every module's routes under /v1.
func NewRouter(cfg Config) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()

	// Global Middleware:
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	// - RequestLogger: Structured access log with a correlation id per request.
	// - Metrics: Prometheus request counters and latencies.
	r.Use(gin.Recovery(), RequestLogger(logger), Metrics())

	// Configure CORS (Cross-Origin Resource Sharing).
	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins(cfg.IsProduction, cfg.ProdOrigins)
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", CorrelationIDHeader}
	config.ExposeHeaders = []string{CorrelationIDHeader, "X-Pagination-Window", "Content-Disposition"}
	r.Use(cors.New(config))

	// Operational endpoints stay outside /v1 and outside auth.
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", readyHandler(cfg.DB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		registerAuthRoutes(v1, authMiddleware)
		for _, m := range cfg.Modules {
			m.RegisterRoutes(v1, authMiddleware)
		}
	}

	return r
}

func allowedOrigins(isProduction bool, prodOrigins string) []string {
	if !isProduction {
		return []string{
			"http://localhost:3000", // Admin UI dev server
			"http://localhost:8081", // Swagger
		}
	}
	var origins []string
	for _, o := range strings.Split(prodOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		// cors.New panics on an empty allow-list without AllowAllOrigins.
		origins = []string{"https://localhost"}
	}
	return origins
}

func readyHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		if err := db.Ping(c.Request.Context()); err != nil {
			slog.WarnContext(c.Request.Context(), "readiness check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
