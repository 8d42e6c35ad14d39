package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/raihansyah/sql-agent/internal/api/handler"
	customMiddleware "github.com/raihansyah/sql-agent/internal/api/middleware"
	"github.com/raihansyah/sql-agent/internal/config"
	"github.com/raihansyah/sql-agent/internal/dbx"
	"github.com/raihansyah/sql-agent/internal/repository/redis"
	"github.com/raihansyah/sql-agent/internal/repository/sqlite"
	"github.com/raihansyah/sql-agent/internal/service"
	"github.com/raihansyah/sql-agent/internal/session"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	cfg *config.Config,
	prefsDB *sqlite.DB,
	prefRepo *sqlite.PreferenceRepository,
	target dbx.Adapter,
	redisClient *redis.Client,
	registry *session.Registry,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Rate limiter and schema cache
	rateLimiter := redis.NewRateLimiter(
		redisClient,
		cfg.Security.RateLimit.RequestsPerMinute,
		cfg.Security.RateLimit.Burst,
	)
	schemaCache := redis.NewSchemaCache(redisClient)

	// Services
	queryService := service.NewQueryService(registry)
	preferenceService := service.NewPreferenceService(prefRepo)
	schemaService := service.NewSchemaService(target, schemaCache)

	// Handlers
	queryHandler := handler.NewQueryHandler(queryService)
	preferenceHandler := handler.NewPreferenceHandler(preferenceService)
	schemaHandler := handler.NewSchemaHandler(schemaService)
	sessionHandler := handler.NewSessionHandler(queryService)
	wsHandler := NewWSHandler(queryService)

	rateLimitMiddleware := customMiddleware.NewRateLimitMiddleware(rateLimiter)

	r.Route("/api/v1", func(r chi.Router) {
		// Health checks
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(prefsDB, target))

		r.Group(func(r chi.Router) {
			r.Use(rateLimitMiddleware.Limit)

			// Query execution
			r.Post("/query", queryHandler.Execute)

			// Preferences
			r.Route("/preferences", func(r chi.Router) {
				r.Post("/", preferenceHandler.Save)
				r.Get("/{userID}", preferenceHandler.Get)
				r.Delete("/{userID}", preferenceHandler.Delete)
			})

			// Target database introspection
			r.Get("/tables", schemaHandler.ListTables)
			r.Get("/schema/{tableName}", schemaHandler.GetTableSchema)

			// Cache management
			r.Post("/cache/flush", handler.FlushCache(schemaCache))

			// Conversation memory
			r.Post("/sessions/clear", sessionHandler.Clear)
		})
	})

	// Streaming surface; the upgrade handshake skips the rate limiter since
	// one long-lived channel serves many turns
	r.Get("/ws/{userID}", wsHandler.Serve)

	return r
}
