package main

import (
	"context"
	"errors"
	"io"
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

	"github.com/Priya-753/notion-clone/internal/app"
	"github.com/Priya-753/notion-clone/internal/auth"
	"github.com/Priya-753/notion-clone/internal/config"
	"github.com/Priya-753/notion-clone/internal/editor/session"
	"github.com/Priya-753/notion-clone/internal/handler"
	"github.com/Priya-753/notion-clone/internal/middleware"
)

// keepLogs is the number of log files kept in LOG_DIR.
const keepLogs = 10

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var out io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, "server", keepLogs)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer logFile.Close()
		out = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"driver", cfg.DatabaseDriver,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage, optional backends and services
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	if err := a.Storage.Migrate(ctx); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Token verification; without Supabase every bearer token is trusted
	var verifier auth.JWTVerifier
	if cfg.SupabaseJWKSURL != "" {
		verifier, err = auth.NewJWTVerifier(ctx, cfg.SupabaseJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
	} else {
		if cfg.Environment == "prod" {
			log.Fatalf("SUPABASE_URL is required in prod")
		}
		verifier = auth.NewDevVerifier(logger)
	}
	defer verifier.Close()

	// Editing sessions
	sessions := session.NewManager(a.Documents, a.Images, a.Parser, session.Config{
		Quiet:        cfg.AutosaveQuiet,
		Idle:         cfg.SessionIdle,
		HistoryDepth: cfg.HistoryDepth,
	}, logger)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		sessions.Run(sweepCtx)
	}()

	handlers := &handler.Handlers{
		Documents: handler.NewDocumentHandler(a.Documents, logger),
		Images:    handler.NewImageHandler(a.Images, logger),
		Imports:   handler.NewImportHandler(a.Imports, logger),
		Exports:   handler.NewExportHandler(a.Documents, a.Exporter, logger),
		ParseURL:  handler.NewParseURLHandler(a.Parser, logger),
		Sessions:  handler.NewSessionHandler(sessions, logger),
	}

	logger.Info("services initialized",
		"pdf_export", a.Exporter.PDFEnabled(),
		"search_backend", a.Search.Backend(),
	)

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handlers.Register(mux)

	// Build middleware chain
	// Order: CORS → Recovery → Logging → Auth → Routes
	var h http.Handler = mux
	h = middleware.Auth(verifier, logger)(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute, // PDF export and URL extraction can be slow
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error("server failed", "error", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}

	// Stopping the sweeper flushes open sessions before the stores go away.
	stopSweep()
	<-sweepDone
	logger.Info("server stopped")
}
