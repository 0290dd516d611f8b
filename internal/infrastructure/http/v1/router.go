// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"msana/internal/domain/audit"
	"msana/internal/domain/auth"
	"msana/internal/domain/catalogs/product"
	"msana/internal/domain/catalogs/supplier"
	"msana/internal/domain/documents/invoice"
	"msana/internal/domain/reports"
	"msana/internal/domain/settings"
	"msana/internal/infrastructure/http/v1/handlers"
	"msana/internal/infrastructure/http/v1/middleware"
	"msana/internal/infrastructure/storage/postgres"
	"msana/pkg/logger"
)

// RouterConfig holds everything the HTTP layer depends on.
type RouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger

	JWTValidator middleware.JWTValidator

	AuthService     *auth.Service
	ProductService  *product.Service
	SupplierService *supplier.Service
	InvoiceService  *invoice.Service
	SettingsService *settings.Service
	ReportService   *reports.Service
	AuditRepo       audit.Repository

	CORSOrigins []string
	Development bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Order matters: recovery outermost, then tracing, logging and the
	// single error renderer.
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	router.Use(corsMiddleware(cfg.CORSOrigins))

	baseHandler := handlers.NewBaseHandler()

	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	api := router.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

		publicAuth := api.Group("/auth")
		protectedAuth := api.Group("/auth")
		protectedAuth.Use(middleware.Auth(cfg.JWTValidator))
		authHandler.RegisterRoutes(publicAuth, protectedAuth)

		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		handlers.NewProductHandler(baseHandler, cfg.ProductService).RegisterRoutes(protected)
		handlers.NewSupplierHandler(baseHandler, cfg.SupplierService).RegisterRoutes(protected)
		handlers.NewInvoiceHandler(baseHandler, cfg.InvoiceService).RegisterRoutes(protected)
		handlers.NewSettingsHandler(baseHandler, cfg.SettingsService).RegisterRoutes(protected)
		handlers.NewReportHandler(baseHandler, cfg.ReportService).RegisterRoutes(protected)

		adminOnly := protected.Group("")
		adminOnly.Use(middleware.RequireRole(string(auth.RoleAdmin)))
		handlers.NewAuditHandler(baseHandler, cfg.AuditRepo).RegisterRoutes(adminOnly)
	}

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
		corsConfig.AllowOrigins = nil
	}
	return cors.New(corsConfig)
}
