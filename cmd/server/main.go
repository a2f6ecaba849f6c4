package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kavya/transintelliflow/backend/internal/config"
	"github.com/kavya/transintelliflow/backend/internal/logging"
	"github.com/kavya/transintelliflow/backend/internal/metrics"
	"github.com/kavya/transintelliflow/backend/internal/persistence"
	"github.com/kavya/transintelliflow/backend/internal/scoring"
	"github.com/kavya/transintelliflow/backend/internal/server"
	"github.com/kavya/transintelliflow/backend/internal/service"
	"github.com/kavya/transintelliflow/backend/internal/staging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	scorer, err := buildScoringClient(logger, cfg)
	if err != nil {
		logger.Error("failed to create scoring client", "error", err)
		os.Exit(1)
	}

	persistClient, err := buildPersistenceClient(logger, cfg)
	if err != nil {
		logger.Error("failed to create persistence client", "error", err)
		os.Exit(1)
	}

	var collector metrics.Collector = metrics.NoOpCollector{}
	var metricsHandler http.Handler
	if cfg.HTTP.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
		collector = metrics.NewPrometheusCollector("transintelliflow", registry)
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	store := staging.NewStore()
	bridge := persistence.NewBridge(logger, persistClient)
	simulationService := service.NewSimulationService(logger, scorer, store, bridge, collector)
	apiHandlers := server.NewAPIHandlers(logger, simulationService, cfg.Simulation)

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           server.ScoringHealthService{Client: scorer},
		API:              apiHandlers,
		MetricsHandler:   metricsHandler,
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildScoringClient(logger *slog.Logger, cfg config.Config) (scoring.Client, error) {
	if cfg.Scoring.URL == "" {
		logger.Warn("SCORING_URL not set, falling back to the local rule scorer")
		return scoring.NewRuleScorer(), nil
	}
	return scoring.NewHTTPClient(logger, scoring.Options{
		BaseURL: cfg.Scoring.URL,
		APIKey:  cfg.Scoring.APIKey,
		Timeout: cfg.Scoring.Timeout,
	})
}

func buildPersistenceClient(logger *slog.Logger, cfg config.Config) (persistence.Client, error) {
	if cfg.Persistence.URL == "" {
		logger.Warn("PERSISTENCE_URL not set, commits will be held in memory only")
		return persistence.NewMemoryClient(), nil
	}
	return persistence.NewHTTPClient(persistence.Options{
		BaseURL: cfg.Persistence.URL,
		APIKey:  cfg.Persistence.APIKey,
		Timeout: cfg.Persistence.Timeout,
	})
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	var origins []string
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
