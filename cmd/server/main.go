package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/raihansyah/sql-agent/internal/api"
	"github.com/raihansyah/sql-agent/internal/config"
	"github.com/raihansyah/sql-agent/internal/dbx"
	"github.com/raihansyah/sql-agent/internal/dbx/mysql"
	"github.com/raihansyah/sql-agent/internal/dbx/postgres"
	sqliteadapter "github.com/raihansyah/sql-agent/internal/dbx/sqlite"
	"github.com/raihansyah/sql-agent/internal/engine"
	"github.com/raihansyah/sql-agent/internal/engine/gemini"
	"github.com/raihansyah/sql-agent/internal/repository/redis"
	"github.com/raihansyah/sql-agent/internal/repository/sqlite"
	"github.com/raihansyah/sql-agent/internal/session"
)

func main() {
	// Load .env file - try multiple locations
	envPaths := []string{".env", "../.env", "../../.env"}
	envLoaded := false
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			fmt.Printf("Loaded .env from: %s\n", p)
			envLoaded = true
			break
		}
	}
	if !envLoaded {
		fmt.Println("Warning: .env file not found in any standard location")
	}

	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("target_driver", cfg.Target.Driver).
		Msg("Starting SQL agent server")

	// Preference store
	prefsDB, err := sqlite.NewDB(context.Background(), cfg.Preferences.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open preference store")
	}
	defer prefsDB.Close()

	if err := prefsDB.EnsureSchema(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare preference store schema")
	}
	prefRepo := sqlite.NewPreferenceRepository(prefsDB)

	// Target database
	dbRegistry := dbx.NewRegistry()
	dbRegistry.Register("postgres", postgres.NewAdapter)
	dbRegistry.Register("mysql", mysql.NewAdapter)
	dbRegistry.Register("sqlite", sqliteadapter.NewAdapter)

	target, err := dbRegistry.Open(context.Background(), cfg.Target.Driver, dbx.ConnectionConfig{
		Host:           cfg.Target.Host,
		Port:           cfg.Target.Port,
		Database:       cfg.Target.Database,
		Username:       cfg.Target.User,
		Password:       cfg.Target.Password,
		SSLMode:        cfg.Target.SSLMode,
		MaxRows:        cfg.Security.MaxRows,
		TimeoutSeconds: int(cfg.Security.QueryTimeout.Seconds()),
	})
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Target.Driver).Msg("Failed to connect to target database")
	}
	defer target.Close()

	// Initialize Redis
	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// Session registry with a Gemini engine factory
	registry := session.NewRegistry(func() (engine.Engine, error) {
		return gemini.New(context.Background(), gemini.Config{
			APIKey:       cfg.Gemini.APIKey,
			Model:        cfg.Gemini.Model,
			MaxRows:      cfg.Security.MaxRows,
			QueryTimeout: cfg.Security.QueryTimeout,
		}, target, prefRepo)
	})

	// Initialize router
	router := api.NewRouter(cfg, prefsDB, prefRepo, target, redisClient, registry)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
