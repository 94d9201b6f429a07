package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"noteshelf/internal/auth"
	"noteshelf/internal/config"
	"noteshelf/internal/domain/repositories"
	"noteshelf/internal/handler"
	"noteshelf/internal/middleware"
	"noteshelf/internal/repository/memory"
	"noteshelf/internal/repository/postgres"
	"noteshelf/internal/service"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run wires the server and blocks until it has shut down
func run() error {
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logOut, logCloser, err := config.LogWriter(cfg)
	if err != nil {
		return fmt.Errorf("set up log file: %w", err)
	}
	defer logCloser.Close()

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"store", cfg.StoreBackend,
		"table_prefix", cfg.TablePrefix,
		"max_folder_depth", cfg.MaxFolderDepth,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jwtVerifier, err := auth.NewVerifier(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("create JWT verifier: %w", err)
	}
	defer jwtVerifier.Close()

	// Create repositories
	var (
		folderRepo repositories.FolderRepository
		noteRepo   repositories.NoteRepository
		txManager  repositories.TransactionManager
	)

	switch cfg.StoreBackend {
	case "memory":
		store := memory.NewStore()
		folderRepo = store.Folders()
		noteRepo = store.Notes()
		txManager = store.Transactions()
		logger.Warn("using in-memory store, data is lost on restart")

	case "postgres":
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("create connection pool: %w", err)
		}
		defer pool.Close()

		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(cfg.TablePrefix),
			Logger: logger,
		}
		if err := postgres.EnsureSchema(ctx, repoConfig); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		logger.Info("database connected")

		folderRepo = postgres.NewFolderRepository(repoConfig)
		noteRepo = postgres.NewNoteRepository(repoConfig)
		txManager = postgres.NewTransactionManager(repoConfig)

	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (want postgres or memory)", cfg.StoreBackend)
	}

	// Create services
	validator := service.NewHierarchyValidator(cfg.MaxFolderDepth)
	folderService := service.NewFolderService(folderRepo, noteRepo, txManager, validator, logger)
	noteService := service.NewNoteService(noteRepo, folderRepo, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux,
		handler.NewFolderHandler(folderService, logger),
		handler.NewNoteHandler(noteService, logger),
	)

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → RequestLogger → Routes
	var h http.Handler = mux
	h = middleware.RequestLogger(logger)(h)
	h = middleware.AuthMiddleware(jwtVerifier, logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	<-shutdownDone
	return nil
}
