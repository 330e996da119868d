package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"deckcast/internal/config"
	"deckcast/internal/handler"
	"deckcast/internal/middleware"
	"deckcast/internal/repository"
	"deckcast/internal/service"
	"deckcast/internal/service/auth"
	"deckcast/pkg/database"
	"deckcast/pkg/logger"
	"deckcast/pkg/redis"
)

// Resources holds all resources that need cleanup
type Resources struct {
	db          *database.PostgresDB
	redisClient *redis.Client
	server      *http.Server
	log         *logger.Logger
	mu          sync.Mutex
	closed      bool
}

// Cleanup gracefully closes all resources
func (r *Resources) Cleanup(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error

	r.log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server first to stop accepting new requests
	if r.server != nil {
		if err := r.server.Shutdown(ctx); err != nil {
			r.log.WithError(err).Error("Failed to shutdown HTTP server")
			errs = append(errs, fmt.Errorf("HTTP server shutdown: %w", err))
		} else {
			r.log.Info("HTTP server shutdown complete")
		}
	}

	if r.redisClient != nil {
		healthCtx, healthCancel := context.WithTimeout(ctx, 2*time.Second)
		if err := r.redisClient.Health(healthCtx); err != nil {
			r.log.WithError(err).Warn("Redis health check failed before closing")
		}
		healthCancel()

		if err := r.redisClient.Close(); err != nil {
			r.log.WithError(err).Error("Failed to close Redis connection")
			errs = append(errs, fmt.Errorf("Redis close: %w", err))
		} else {
			r.log.Info("Redis connection closed")
		}
	}

	if r.db != nil {
		r.db.Close()
		r.log.Info("Database connection pool closed")
	}

	if len(errs) > 0 {
		r.log.WithField("error_count", len(errs)).Error("Cleanup completed with errors")
		return fmt.Errorf("cleanup completed with %d errors: %v", len(errs), errs)
	}

	r.log.Info("Graceful shutdown completed")
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.WithFields(map[string]interface{}{
		"port":        cfg.Port,
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
	}).Info("Starting deckcast server")

	ctx := context.Background()
	resources := &Resources{log: log}

	// Pick the persistence backend: Postgres when configured, the
	// file-backed store otherwise (single-node deployments and local dev).
	var stores repository.Stores
	if cfg.DatabaseURL != "" {
		db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to database")
		}
		resources.db = db
		stores = repository.Stores{
			Presentations: repository.NewPresentationRepository(db),
			Polls:         repository.NewPollRepository(db),
		}
		log.Info("Using Postgres persistence")
	} else {
		fileStore, err := repository.NewFileStore(cfg.DataDir)
		if err != nil {
			log.WithError(err).Fatal("Failed to open file store")
		}
		stores = repository.Stores{
			Presentations: fileStore.Presentations(),
			Polls:         fileStore.Polls(),
		}
		log.WithField("data_dir", cfg.DataDir).Info("Using file-backed persistence")
	}

	// Redis is optional: without it snapshots are uncached and revote
	// prevention falls back to the document itself.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			redisClient = client
			resources.redisClient = client
			log.Info("Redis client initialized")
		}
	} else {
		log.Info("Redis URL not configured, proceeding without caching")
	}

	// Initialize services
	authService := auth.NewService(cfg.JWTSecret, log)
	presentationService := service.NewPresentationService(stores.Presentations, redisClient, log.Logger)
	pollService := service.NewPollService(stores.Polls, redisClient, log.Logger)
	voteService := service.NewVoteService(stores.Presentations, stores.Polls, redisClient, log.Logger)

	router := setupRouter(cfg, log, authService, presentationService, pollService, voteService)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	resources.server = server

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := resources.Cleanup(cleanupCtx); err != nil {
			log.WithError(err).Error("Cleanup completed with errors")
		}
	}()

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Server starting on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Server error occurred")
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-serverErrChan:
		log.WithError(err).Error("Server failed, initiating shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := resources.Cleanup(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown completed with errors")
		os.Exit(1)
	}

	log.Info("Application shutdown complete")
}

// setupRouter configures and returns the HTTP router
func setupRouter(
	cfg *config.Config,
	log *logger.Logger,
	authService service.AuthService,
	presentationService *service.PresentationService,
	pollService *service.PollService,
	voteService *service.VoteService,
) *chi.Mux {
	r := chi.NewRouter()

	corsConfig := middleware.DefaultCORSConfig(cfg.AllowedOrigins)

	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.RequestID(log))
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Compress(5))
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Create handlers
	healthHandler := handler.NewHealthHandler(log)
	presentationHandler := handler.NewPresentationHandler(presentationService)
	pollHandler := handler.NewPollHandler(pollService)
	voteHandler := handler.NewVoteHandler(voteService)
	shareHandler := handler.NewShareHandler(pollService, presentationService, cfg.PublicBaseURL)

	// Health check (no auth required)
	r.Get("/health", healthHandler.Check)

	r.Route("/api/v1", func(r chi.Router) {
		// Audience endpoints: no account needed to watch or vote
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(authService, log))

			r.Get("/presentations/{presentationId}/snapshot", presentationHandler.GetSnapshot)
			r.Post("/presentations/{presentationId}/votes", voteHandler.SubmitDeckVote)
			r.Get("/polls/code/{shortCode}", pollHandler.GetByShortCode)
			r.Post("/polls/code/{shortCode}/votes", voteHandler.SubmitPollVote)
		})

		// Editor endpoints (require authentication)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authService, log))

			r.Route("/presentations", func(r chi.Router) {
				r.Post("/", presentationHandler.Create)
				r.Get("/", presentationHandler.List)

				r.Route("/{presentationId}", func(r chi.Router) {
					r.Get("/", presentationHandler.Get)
					r.Put("/", presentationHandler.Save)
					r.Patch("/", presentationHandler.Update)
					r.Delete("/", presentationHandler.Delete)

					r.Get("/qr", shareHandler.PresentationQR)
					r.Put("/pointer", presentationHandler.SetPointer)

					r.Route("/slides", func(r chi.Router) {
						r.Post("/", presentationHandler.AddSlide)
						r.Put("/order", presentationHandler.ReorderSlides)

						r.Route("/{slideId}", func(r chi.Router) {
							r.Patch("/", presentationHandler.UpdateSlide)
							r.Delete("/", presentationHandler.RemoveSlide)

							r.Route("/elements", func(r chi.Router) {
								r.Post("/", presentationHandler.CreateElement)
								r.Patch("/{elementId}", presentationHandler.UpdateElement)
								r.Delete("/{elementId}", presentationHandler.DeleteElement)
							})
						})
					})
				})
			})

			r.Route("/polls", func(r chi.Router) {
				r.Post("/", pollHandler.Create)

				r.Route("/{pollId}", func(r chi.Router) {
					r.Get("/", pollHandler.Get)
					r.Delete("/", pollHandler.Delete)
					r.Post("/publish", pollHandler.Publish)
					r.Post("/schedule", pollHandler.Schedule)
					r.Post("/close", pollHandler.Close)
					r.Get("/qr", shareHandler.PollQR)
					r.Get("/share", shareHandler.PollJoinInfo)
				})
			})
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Endpoint not found"}`))
	})

	log.Info("Router configured successfully")
	return r
}
