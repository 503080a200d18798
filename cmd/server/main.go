package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"telebot/internal/config"
	"telebot/internal/handler"
	"telebot/internal/middleware"
	"telebot/internal/repository/memory"
	"telebot/internal/service"
	"telebot/internal/service/ai"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"patch_mode", cfg.PatchMode,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// In-memory store, seeded with the default project
	store := memory.NewStore(&memory.Config{
		MessageRetention: cfg.MessageRetention,
		Logger:           logger,
	})
	if err := store.Init(); err != nil {
		log.Fatalf("Failed to seed store: %v", err)
	}

	// AI resolver: configured providers first, rules last
	resolver, err := ai.NewResolverFromConfig(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to setup AI resolver: %v", err)
	}

	// Create services
	projectService := service.NewProjectService(store, logger)
	chatService := service.NewChatService(store, store, projectService, resolver, cfg.PatchMode, logger)
	archiveService := service.NewArchiveService(store, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, &handler.Handlers{
		Project: handler.NewProjectHandler(projectService, logger),
		Chat:    handler.NewChatHandler(chatService, logger),
		AI:      handler.NewAIHandler(resolver, logger),
		Archive: handler.NewArchiveHandler(archiveService, cfg.ImportMaxBytes, logger),
		Health:  handler.NewHealthHandler(resolver, cfg.PatchMode),
		AILimit: middleware.NewRateLimiter(cfg.AIRateLimit, cfg.AIRateBurst, logger).Middleware,
	})

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → RequestLogger → Recovery → Routes
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLogger(logger)(h)

	// CORS - outermost so OPTIONS pre-flight requests are answered first
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     h,
		ReadTimeout: 15 * time.Second,
		// Chat turns may wait for the full AI response deadline
		WriteTimeout: cfg.ResponseDeadline + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Closed once Shutdown has drained in-flight requests
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	<-done
	logger.Info("server stopped")
}
