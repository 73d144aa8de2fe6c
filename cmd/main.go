package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fieldsales-service/internal/auth"
	"fieldsales-service/internal/handler"
	"fieldsales-service/internal/middleware"
	"fieldsales-service/pkg/config"
	"fieldsales-service/pkg/database"
	"fieldsales-service/pkg/jwtutil"
	"fieldsales-service/pkg/logger"
	"fieldsales-service/pkg/storage"
	"fieldsales-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	defer log.Sync()
	log.Info("Starting field sales service...", cfg.LogConfig()...)

	// Amounts and coordinates go out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close()
	log.Info("Database connection established")

	// Initialize JWT verification
	authenticator := auth.NewAuthenticator(jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      cfg.JWT.SigningKey,
		ExpirationHours: cfg.JWT.ExpirationHours,
	}))
	log.Info("JWT utility initialized")

	// Object store for punch-in photos
	opts := handler.Options{
		Location:       cfg.Location(),
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
	}
	store, err := storage.NewS3Store(context.Background(), cfg.Storage)
	if err != nil {
		log.Warn("Object storage unavailable, punch-in uploads will fail", zap.Error(err))
	} else {
		opts.Store = store
	}
	handler.Configure(opts)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	e := echo.New()
	e.HideBanner = true

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.BodyLimit("10M"))
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	handler.RegisterRoutes(e, authenticator)

	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}
