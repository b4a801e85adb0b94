package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/visualenglishpl/backend/docs"
	authMiddleware "github.com/visualenglishpl/backend/libs/auth/middleware"
	authService "github.com/visualenglishpl/backend/libs/auth/service"
	"github.com/visualenglishpl/backend/libs/config"
	"github.com/visualenglishpl/backend/libs/logger"
	loggerMiddleware "github.com/visualenglishpl/backend/libs/logger/middleware"
	sharedMiddleware "github.com/visualenglishpl/backend/libs/middlewares"

	"github.com/visualenglishpl/backend/internal/cache"
	"github.com/visualenglishpl/backend/internal/handlers"
	"github.com/visualenglishpl/backend/internal/repositories"
	"github.com/visualenglishpl/backend/internal/services"
	"github.com/visualenglishpl/backend/internal/storage"
)

const maxRequestSize = 1 * 1024 * 1024 // 1MB, JSON bodies only

// @title Visual English Content API
// @version 1.0
// @description API for resolving Visual English slide materials, question mappings and teacher resources
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@visualenglish.pl

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description API key for service-to-service authentication
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting Visual English Content Service")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize JWT token generator (for auth middleware)
	tokenGenerator := authService.NewTokenGenerator(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
	)

	// Initialize storage gateway with its signed URL cache
	urlCache := cache.New()
	gateway := storage.NewSupabaseGateway(cfg.Storage, urlCache, logger.Logger)

	// Initialize repositories
	overlayRepo := repositories.NewOverlayRepository(db)
	resourceRepo := repositories.NewResourceRepository(db)

	// Initialize services
	qaStore := services.NewQAStore(gateway, logger.Logger)
	resolverService := services.NewResolverService(gateway, overlayRepo, qaStore, cfg.Storage.SignedURLTTL, logger.Logger)
	catalogService := services.NewCatalogService(gateway, cfg.Storage.SignedURLTTL, logger.Logger)
	resourceService := services.NewResourceService(resourceRepo, logger.Logger)

	// Initialize middleware
	authMw := authMiddleware.AuthMiddleware(tokenGenerator)
	adminMw := authMiddleware.RoleMiddleware(tokenGenerator, 3) // Admin role = 3
	apiKeyMw := authMiddleware.APIKeyMiddleware(cfg.APIKey)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(logger.Logger)
	catalogHandler := handlers.NewCatalogHandler(catalogService, logger.Logger)
	materialsHandler := handlers.NewMaterialsHandler(resolverService, overlayRepo, logger.Logger)
	resourcesHandler := handlers.NewResourcesHandler(resourceService, logger.Logger)
	rebuildHandler := handlers.NewRebuildHandler(qaStore, logger.Logger)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(sharedMiddleware.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger.Logger))
	r.Use(sharedMiddleware.RecoveryMiddleware(logger.Logger))
	r.Use(sharedMiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(sharedMiddleware.RequestSizeLimitMiddleware(maxRequestSize))

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Scope router to /api/v1
	r.Route("/api/v1", func(r chi.Router) {
		healthHandler.RegisterRoutes(r)
		catalogHandler.RegisterRoutes(r)
		materialsHandler.RegisterRoutes(r, authMw)
		resourcesHandler.RegisterRoutes(r, authMw, adminMw)
		rebuildHandler.RegisterRoutes(r, apiKeyMw)
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	// Use service-specific migration table name to avoid conflicts with other services
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "content_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Get the working directory or use migrations folder relative to the binary
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Try parent directory if running from cmd
		if _, err := os.Stat("../migrations"); err == nil {
			migrationPath = "file://../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(
		migrationPath,
		"mysql",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
