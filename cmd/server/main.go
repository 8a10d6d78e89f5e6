package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/cestino/shopping-service/config"
	"github.com/cestino/shopping-service/internal/database"
	"github.com/cestino/shopping-service/internal/engine"
	"github.com/cestino/shopping-service/internal/handlers"
	"github.com/cestino/shopping-service/internal/middleware"
	"github.com/cestino/shopping-service/internal/store"
	"github.com/cestino/shopping-service/internal/store/localfile"
	"github.com/cestino/shopping-service/internal/store/postgres"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Msg("Starting shopping service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	local, err := localfile.New(cfg.Storage.BasePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open local state store")
	}

	var remote store.Remote
	if dbURL := config.GetDatabaseURL(); dbURL != "" {
		if err := database.Connect(
			ctx,
			dbURL,
			cfg.Database.MaxConnections,
			cfg.Database.MinConnections,
			cfg.Database.MaxConnLifetime,
			cfg.Database.MaxConnIdleTime,
		); err != nil {
			logger.Warn().Err(err).Msg("Database unreachable, continuing in local mode")
		} else {
			defer database.Close()
			if err := postgres.EnsureSchema(ctx, database.Pool()); err != nil {
				logger.Warn().Err(err).Msg("Failed to ensure schema")
			}
			remote = postgres.New(database.Pool(), logger)
			logger.Info().Msg("Database connected")
		}
	} else {
		logger.Info().Msg("No DATABASE_URL set, running in local mode")
	}

	eng := engine.New(local, remote, logger)
	if err := eng.Init(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize engine")
	}

	sweeper := engine.NewSweeper(eng, logger, cfg.Sync.LocalSweepInterval, cfg.Sync.CloudSweepInterval)
	go sweeper.Start(ctx)

	handlers.Init(eng)

	if cfg.Logging.Level == "info" || cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	setupMiddleware(router, logger)

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(middleware.RateLimitMiddleware())
	{
		api.GET("/state", handlers.GetState)
		api.PUT("/filter", handlers.SetFilter)

		products := api.Group("/products")
		{
			products.GET("", handlers.ListProducts)
			products.POST("", handlers.AddProduct)
			products.PUT("/:id", handlers.EditProduct)
			products.DELETE("/:id", handlers.DeleteProduct)
			products.POST("/:id/bought", handlers.ToggleProductBought)
		}

		supermarkets := api.Group("/supermarkets")
		{
			supermarkets.GET("", handlers.ListSupermarkets)
			supermarkets.POST("", handlers.AddSupermarket)
			supermarkets.PUT("/:name", handlers.EditSupermarket)
			supermarkets.DELETE("/:name", handlers.DeleteSupermarket)
		}

		templates := api.Group("/templates")
		{
			templates.GET("", handlers.ListTemplates)
			templates.PUT("/:id", handlers.EditTemplate)
			templates.DELETE("/:id", handlers.DeleteTemplate)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")
	sweeper.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "shopping-service").Logger()
	return &logger
}

func setupMiddleware(router *gin.Engine, logger *zerolog.Logger) {
	router.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		end := time.Now()
		latency := end.Sub(start)

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", c.Writer.Status()).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Msg("HTTP request")
	})
}
