package app

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/link-catalog-backend/internal/api"
	"github.com/nekogravitycat/link-catalog-backend/internal/auth"
	"github.com/nekogravitycat/link-catalog-backend/internal/cache"
	"github.com/nekogravitycat/link-catalog-backend/internal/event"
	"github.com/nekogravitycat/link-catalog-backend/internal/resource"
	resourceHttp "github.com/nekogravitycat/link-catalog-backend/internal/resource/http"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	JWTSecret    string
	JWTTTL       time.Duration

	Logger    *slog.Logger
	ListCache cache.ListCache
	Publisher event.Publisher

	ListMaxLimit  int
	ExportMaxRows int
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router          *gin.Engine
	JWTManager      *auth.JWTManager
	ResourceService resource.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	// Init Components
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// Resource Module
	resRepo := resource.NewPgxRepository(cfg.DBPool)
	resService := resource.NewService(resRepo, cfg.ListCache, cfg.Publisher, cfg.Logger, resource.Options{
		MaxLimit:      cfg.ListMaxLimit,
		ExportMaxRows: cfg.ExportMaxRows,
	})

	// API Router Config
	routerParams := api.Config{
		IsProduction: cfg.IsProduction,
		ProdOrigins:  cfg.ProdOrigins,
		JWTManager:   jwtManager,
		Logger:       cfg.Logger,
		Modules: []api.Module{
			resourceHttp.Module{Handler: resourceHttp.NewHandler(resService)},
		},
	}
	if cfg.DBPool != nil {
		routerParams.DB = cfg.DBPool
	}

	// Router
	router := api.NewRouter(routerParams)

	return &Container{
		Router:          router,
		JWTManager:      jwtManager,
		ResourceService: resService,
	}
}
