package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "divvy/docs"
	"divvy/internal/config"
	"divvy/internal/database"
	"divvy/internal/enrich"
	"divvy/internal/expense"
	"divvy/internal/group"
	"divvy/internal/notification"
	"divvy/pkg/logging"
	"divvy/pkg/metrics"
)

// @title        Divvy API
// @version      1.0
// @description  Shared expense tracking with derived balances and settlement suggestions.
// @BasePath     /api/v1
func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	logging.Setup()
	cfg := config.Load()

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to database")

	// Receipt scanning and transcript parsing only work with an API key;
	// everything else runs without one.
	var enricher *enrich.Service
	if cfg.GeminiAPIKey != "" {
		enricher, err = enrich.NewService(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			slog.Error("failed to initialize enrichment client", "error", err)
			os.Exit(1)
		}
		slog.Info("enrichment enabled", "model", cfg.GeminiModel)
	} else {
		slog.Info("GEMINI_API_KEY not set, receipt and voice parsing disabled")
	}

	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo)
	notificationHandler := notification.NewHandler(notificationService)

	expenseRepo := expense.NewRepository(db)
	expenseService := expense.NewService(expenseRepo, enricher, notificationService)
	expenseHandler := expense.NewHandler(expenseService)

	groupRepo := group.NewRepository(db)
	groupService := group.NewService(groupRepo, expenseRepo, notificationService)
	groupHandler := group.NewHandler(groupService)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/groups", groupHandler.Routes())
		r.Mount("/expenses", expenseHandler.Routes())
		r.Mount("/notifications", notificationHandler.Routes())
	})

	slog.Info("server starting", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
