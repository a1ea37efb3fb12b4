package server

import (
	"fmt"
	"net/http"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	custommiddleware "storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	store  *database.Store
	redis  *redis.Client
}

// NewServer wires the router. The store is opened lazily by the first request
// that passes the schema gate; a nil redis client disables rate limiting.
func NewServer(cfg *config.Config, logger *zap.Logger, store *database.Store, schema *database.Bootstrapper, redisClient *redis.Client) *Server {
	router := NewRouter(cfg, logger, store, schema, redisClient)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		store:  store,
		redis:  redisClient,
	}

	return server
}

// NewRouter builds the HTTP handler tree
func NewRouter(cfg *config.Config, logger *zap.Logger, store *database.Store, schema *database.Bootstrapper, redisClient *redis.Client) chi.Router {
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	// Liveness and diagnostics never wait on the schema
	systemHandler := transport.NewSystemHandler(store, schema, cfg.Database.Hosted, logger)
	systemHandler.RegisterRoutes(router)

	// Initialize repositories
	categoryRepo := repository.NewCategoryRepository(store)
	productRepo := repository.NewProductRepository(store)

	// Initialize services
	catalogService := service.NewCatalogService(categoryRepo, productRepo)
	submissionService := service.NewSubmissionService(logger)

	// Initialize handlers
	categoryHandler := transport.NewCategoryHandler(catalogService, logger)
	productHandler := transport.NewProductHandler(catalogService, logger)
	submissionHandler := transport.NewSubmissionHandler(submissionService, logger)

	var limiter func(http.Handler) http.Handler
	if redisClient != nil {
		limiter = custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "ratelimit:submissions",
		}, logger)
	}

	// Register routes
	router.Group(func(r chi.Router) {
		r.Use(custommiddleware.RequireSchema(schema, logger))

		categoryHandler.RegisterRoutes(r)
		productHandler.RegisterRoutes(r)
		submissionHandler.RegisterRoutes(r, limiter)
	})

	return router
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error("Failed to close store", zap.Error(err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
