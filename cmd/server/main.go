// Package main is the entry point for the mSana API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"msana/internal/config"
	"msana/internal/domain/audit"
	"msana/internal/domain/auth"
	"msana/internal/domain/catalogs/product"
	"msana/internal/domain/catalogs/supplier"
	"msana/internal/domain/documents/invoice"
	"msana/internal/domain/reports"
	"msana/internal/domain/settings"
	"msana/internal/domain/stockalert"
	v1 "msana/internal/infrastructure/http/v1"
	"msana/internal/infrastructure/notify"
	"msana/internal/infrastructure/storage/postgres"
	"msana/internal/infrastructure/storage/postgres/auth_repo"
	"msana/internal/infrastructure/storage/postgres/catalog_repo"
	"msana/internal/infrastructure/storage/postgres/document_repo"
	"msana/internal/infrastructure/storage/postgres/report_repo"
	"msana/pkg/logger"
)

func main() {
	// .env is optional; real deployments configure through the environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("warning: could not load .env: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: cfg.App.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	ctx := context.Background()
	log.Info("starting msana server")

	// --- Database ---
	pool, err := postgres.NewPool(ctx, postgres.PoolConfigFromApp(cfg.DB))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	productRepo := catalog_repo.NewProductRepo(txManager)
	supplierRepo := catalog_repo.NewSupplierRepo(txManager)
	invoiceRepo := document_repo.NewInvoiceRepo(txManager)
	userRepo := auth_repo.NewUserRepo(txManager)
	settingsRepo := postgres.NewSettingsRepo(txManager)
	notificationRepo := postgres.NewNotificationRepo(txManager)
	reportRepo := report_repo.NewReportRepo(txManager)

	auditRepo, err := postgres.NewAuditRepo(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit repository", "error", err)
	}
	auditor := audit.NewRecorder(auditRepo, log)

	// --- Stock alert monitor ---
	notifier := notify.NewTelegramNotifier(notify.TelegramConfig{
		BotToken: cfg.Telegram.BotToken,
		ChatIDs:  cfg.Telegram.ChatIDs,
		Timeout:  cfg.Telegram.Timeout,
	}, notificationRepo, log)

	monitor := stockalert.NewMonitor(productRepo, notifier, log,
		stockalert.WithInterval(cfg.Alerts.ScanInterval),
		stockalert.WithMaxEntries(cfg.Alerts.MaxTracked),
	)

	monitorCtx, stopMonitor := context.WithCancel(ctx)
	defer stopMonitor()
	if cfg.Alerts.Enabled {
		go monitor.Run(monitorCtx)
		log.Infow("stock alert monitor started",
			"interval", cfg.Alerts.ScanInterval,
			"max_tracked", cfg.Alerts.MaxTracked,
		)
	}

	// --- JWT ---
	jwtConfig := auth.DefaultJWTConfig(cfg.JWT.Secret)
	jwtConfig.Issuer = cfg.JWT.Issuer
	jwtConfig.AccessTokenTTL = cfg.JWT.TokenTTL
	jwtService := auth.NewJWTService(jwtConfig)

	// --- Services ---
	authService := auth.NewService(userRepo, jwtService, auditor)
	productService := product.NewService(productRepo, monitor, auditor, supplierRepo)
	supplierService := supplier.NewService(supplierRepo, productRepo)
	invoiceService := invoice.NewService(invoiceRepo, productRepo, auditor, cfg.Invoice.Prefix)
	settingsService := settings.NewService(settingsRepo, auditor)
	reportService := reports.NewService(reportRepo)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:            pool,
		Logger:          log,
		JWTValidator:    jwtService,
		AuthService:     authService,
		ProductService:  productService,
		SupplierService: supplierService,
		InvoiceService:  invoiceService,
		SettingsService: settingsService,
		ReportService:   reportService,
		AuditRepo:       auditRepo,
		CORSOrigins:     cfg.App.CORSOrigins,
		Development:     cfg.App.IsDevelopment(),
	})

	// --- HTTP server ---
	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.App.Port, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	stopMonitor()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
