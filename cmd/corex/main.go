package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/corex-health/corex/internal/predictor"
	"github.com/corex-health/corex/internal/report"
	"github.com/corex-health/corex/internal/report/browser"
	"github.com/corex-health/corex/internal/shared/config"
	"github.com/corex-health/corex/internal/shared/metrics"
	secmiddleware "github.com/corex-health/corex/internal/shared/middleware"
	"github.com/corex-health/corex/internal/submission"
	"github.com/corex-health/corex/internal/webui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	controller := submission.NewController(predictor.NewClient(cfg.Predictor))

	ui, err := webui.NewHandler(controller)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse templates: %v\n", err)
		os.Exit(1)
	}

	exporter := report.NewExporter()
	opener := browser.NewOpener(cfg.Report)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(90 * time.Second))
	r.Use(secmiddleware.SecurityHeaders)
	r.Use(secmiddleware.InputSanitizer)
	r.Use(metrics.Middleware)
	r.Use(secmiddleware.RateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))

	// Health and observability (unauthenticated)
	r.Get("/health", healthHandler)
	r.Handle("/metrics", metrics.Handler())

	// Pages
	r.Get("/", ui.Index)
	r.Get("/report", ui.Report)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		submissionHandler := submission.NewHandler(controller)
		r.Mount("/", submissionHandler.Routes())

		reportHandler := report.NewHandler(exporter, opener, controller)
		r.Mount("/report", reportHandler.Routes())
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		fmt.Println("\nShutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			fmt.Printf("Server shutdown error: %v\n", err)
		}
		close(done)
	}()

	fmt.Println("============================================")
	fmt.Println("COREX Clinical Decision Support")
	fmt.Println("============================================")
	fmt.Printf("Environment:  %s\n", cfg.Server.Env)
	fmt.Printf("Server:       http://localhost:%d\n", cfg.Server.Port)
	fmt.Printf("API:          http://localhost:%d/api/v1\n", cfg.Server.Port)
	fmt.Printf("Health:       http://localhost:%d/health\n", cfg.Server.Port)
	fmt.Printf("Predictor:    %s\n", cfg.Predictor.URL)
	fmt.Printf("Report view:  %s\n", cfg.Report.ViewURL)
	fmt.Println("============================================")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}

	<-done
	fmt.Println("Server stopped")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	})
}
