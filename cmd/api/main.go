package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/eaglereach/civic-data-service/internal/adapter/census"
	"github.com/eaglereach/civic-data-service/internal/adapter/congress"
	"github.com/eaglereach/civic-data-service/internal/adapter/httpapi"
	kafkaadapter "github.com/eaglereach/civic-data-service/internal/adapter/kafka"
	"github.com/eaglereach/civic-data-service/internal/adapter/openmeteo"
	"github.com/eaglereach/civic-data-service/internal/adapter/roleapi"
	"github.com/eaglereach/civic-data-service/internal/adapter/wikidata"
	"github.com/eaglereach/civic-data-service/internal/adapter/zippo"
	"github.com/eaglereach/civic-data-service/internal/cache"
	"github.com/eaglereach/civic-data-service/internal/civic"
	"github.com/eaglereach/civic-data-service/internal/config"
	"github.com/eaglereach/civic-data-service/internal/domain"
	"github.com/eaglereach/civic-data-service/internal/observability"
	"github.com/eaglereach/civic-data-service/internal/resolver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	zips := zippo.NewClient(cfg.Providers.ZippoBaseURL, cfg.Providers.ZippoTimeout, metrics, logger)
	districts := census.NewClient(cfg.Providers.CensusBaseURL, cfg.Providers.CensusTimeout, metrics, logger)
	directory := congress.NewDirectory(cfg.Providers.LegislatorsURL, cfg.Providers.RosterTimeout, cfg.RosterTTL, clock, metrics, logger)

	loc := resolver.New(
		zips, districts,
		cache.New[domain.LocationFix](clock),
		cache.New[domain.ZipPlace](clock),
		cfg.LocationTTL, cfg.ZipTTL,
		metrics, logger,
	)

	opts := civic.Options{
		Local:    wikidata.NewClient(cfg.Providers.WikidataBaseURL, cfg.Providers.WikidataTimeout, metrics, logger),
		Weather:  openmeteo.NewClient(cfg.Providers.OpenMeteoBaseURL, cfg.Providers.WeatherTimeout, metrics, logger),
		DemoMode: cfg.DemoMode,
	}

	// Aggregator path is feature-flagged via ROLE_API_KEY.
	if cfg.RoleAPIKey != "" {
		opts.Roles = roleapi.NewClient(cfg.Providers.RoleAPIBaseURL, cfg.RoleAPIKey, cfg.Providers.RoleAPITimeout, metrics, logger)
		logger.Info("role aggregator enabled", "base_url", cfg.Providers.RoleAPIBaseURL)
	} else {
		logger.Info("role aggregator disabled")
	}

	// Audit publishing is feature-flagged via KAFKA_BROKERS.
	var audit *kafkaadapter.AuditWriter
	if cfg.AuditEnabled {
		audit = kafkaadapter.NewAuditWriter(cfg, logger)
		opts.Audit = audit
		metrics.AuditEnabled.Set(1)
		logger.Info("lookup audit enabled", "topic", cfg.KafkaAuditTopic)
	} else {
		logger.Info("lookup audit disabled")
	}

	svc := civic.New(
		loc, directory,
		cache.New[domain.Lookup](clock), cfg.ResultTTL,
		opts,
		metrics, logger,
	)

	srv := httpapi.NewServer(cfg.HTTPAddr, svc, cfg.AllowedOrigins, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if audit != nil {
		if err := audit.Close(); err != nil {
			logger.Error("audit writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
