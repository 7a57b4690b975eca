// Command lookup performs a single civic lookup from the command line and
// prints the result as JSON. It wires the same adapters as the API server,
// which makes it a quick end-to-end check against the live providers.
//
// Usage:
//
//	go run ./cmd/lookup -input 60601
//	go run ./cmd/lookup -input "233 S Wacker Dr, Chicago, IL" -timeout 30s
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/eaglereach/civic-data-service/internal/adapter/census"
	"github.com/eaglereach/civic-data-service/internal/adapter/congress"
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
	input := flag.String("input", "", "ZIP code or street address to look up")
	timeout := flag.Duration("timeout", 60*time.Second, "overall lookup deadline")
	withWeather := flag.Bool("weather", false, "also fetch current weather for the location")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(*input, *timeout, *withWeather); err != nil {
		fmt.Fprintln(os.Stderr, "lookup failed:", err)
		os.Exit(1)
	}
}

func run(input string, timeout time.Duration, withWeather bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
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
	if cfg.RoleAPIKey != "" {
		opts.Roles = roleapi.NewClient(cfg.Providers.RoleAPIBaseURL, cfg.RoleAPIKey, cfg.Providers.RoleAPITimeout, metrics, logger)
	}

	svc := civic.New(
		loc, directory,
		cache.New[domain.Lookup](clock), cfg.ResultTTL,
		opts,
		metrics, logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := svc.Lookup(ctx, input)
	if err != nil {
		return err
	}

	out := struct {
		Input     string            `json:"input"`
		State     string            `json:"state"`
		Place     string            `json:"place,omitempty"`
		District  *int              `json:"district"`
		Officials []domain.Official `json:"officials"`
	}{
		Input:     result.Input,
		State:     result.Fix.StateAbbr,
		Place:     result.Fix.PlaceName,
		District:  result.Fix.District,
		Officials: result.Officials,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}

	if withWeather {
		report, err := svc.Weather(ctx, input)
		if err != nil {
			return fmt.Errorf("weather: %w", err)
		}
		weather := struct {
			TemperatureC float64 `json:"temperature_c"`
			WindSpeedKmh float64 `json:"wind_speed_kmh"`
			WeatherCode  int     `json:"weather_code"`
			ObservedAt   string  `json:"observed_at"`
		}{report.TemperatureC, report.WindSpeedKmh, report.WeatherCode, report.ObservedAt}
		if err := enc.Encode(weather); err != nil {
			return err
		}
	}
	return nil
}
