// Package census implements domain.DistrictGeocoder against the US Census
// Bureau geocoding service, which exposes both forward (oneline address)
// and reverse (coordinate) geocoding.
package census

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/eaglereach/civic-data-service/internal/domain"
	"github.com/eaglereach/civic-data-service/internal/observability"
)

const providerName = "census"

// Benchmark identifiers. The current vintage occasionally lags new
// coordinates, so a failed match retries once against the older, more
// stable 2020 benchmark before giving up.
const (
	benchmarkCurrent  = "Public_AR_Current"
	benchmarkFallback = "Public_AR_Census2020"
	vintageCurrent    = "Current_Current"
)

// Client queries the Census geocoder for state and congressional district.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Census geocoding client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		metrics:    metrics,
		logger:     logger,
	}
}

// DistrictForCoordinates reverse geocodes a point to its state and
// congressional district.
func (c *Client) DistrictForCoordinates(ctx context.Context, lat, lon float64) (domain.DistrictFix, error) {
	geo, err := c.withBenchmarkFallback(ctx, func(benchmark string) (geographies, error) {
		return c.reverseGeocode(ctx, lat, lon, benchmark)
	})
	if err != nil {
		return domain.DistrictFix{}, err
	}

	state, district, ok := extractStateAndDistrict(geo)
	if !ok {
		return domain.DistrictFix{}, fmt.Errorf("no geography layers at %.6f,%.6f: %w", lat, lon, domain.ErrNotFound)
	}
	return domain.DistrictFix{StateAbbr: state, District: district, Lat: lat, Lon: lon, HasCoords: true}, nil
}

// DistrictForAddress forward geocodes a oneline street address.
func (c *Client) DistrictForAddress(ctx context.Context, address string) (domain.DistrictFix, error) {
	var coords coordinates
	geo, err := c.withBenchmarkFallback(ctx, func(benchmark string) (geographies, error) {
		match, err := c.forwardGeocode(ctx, address, benchmark)
		if err != nil {
			return nil, err
		}
		coords = match.Coordinates
		return match.Geographies, nil
	})
	if err != nil {
		return domain.DistrictFix{}, err
	}

	state, district, ok := extractStateAndDistrict(geo)
	if !ok {
		return domain.DistrictFix{}, fmt.Errorf("no geography layers for address: %w", domain.ErrNotFound)
	}
	fix := domain.DistrictFix{StateAbbr: state, District: district}
	if coords.X != 0 || coords.Y != 0 {
		fix.Lon = coords.X
		fix.Lat = coords.Y
		fix.HasCoords = true
	}
	return fix, nil
}

// withBenchmarkFallback runs query against the current benchmark and, when
// that yields no match, retries once against the fallback benchmark. Only
// a no-match result triggers the retry; transport errors do not.
func (c *Client) withBenchmarkFallback(ctx context.Context, query func(benchmark string) (geographies, error)) (geographies, error) {
	start := time.Now()
	geo, err := query(benchmarkCurrent)
	if err == nil && len(geo) == 0 {
		c.logger.Debug("no match on current benchmark, retrying fallback", "benchmark", benchmarkFallback)
		geo, err = query(benchmarkFallback)
		if err == nil && len(geo) == 0 {
			err = fmt.Errorf("no geocoding match: %w", domain.ErrNotFound)
		}
	}
	c.metrics.UpstreamDuration.WithLabelValues(providerName).Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.metrics.UpstreamRequests.WithLabelValues(providerName, "empty").Inc()
		return nil, err
	case err != nil:
		c.metrics.UpstreamRequests.WithLabelValues(providerName, "error").Inc()
		return nil, err
	}
	c.metrics.UpstreamRequests.WithLabelValues(providerName, "success").Inc()
	return geo, nil
}

func (c *Client) reverseGeocode(ctx context.Context, lat, lon float64, benchmark string) (geographies, error) {
	params := url.Values{
		"x":         {fmt.Sprintf("%f", lon)},
		"y":         {fmt.Sprintf("%f", lat)},
		"benchmark": {benchmark},
		"vintage":   {vintageCurrent},
		"layers":    {"all"},
		"format":    {"json"},
	}
	u := c.baseURL + "/geocoder/geographies/coordinates?" + params.Encode()

	var body struct {
		Result struct {
			Geographies geographies `json:"geographies"`
		} `json:"result"`
	}
	if err := c.getJSON(ctx, u, &body); err != nil {
		return nil, err
	}
	return body.Result.Geographies, nil
}

func (c *Client) forwardGeocode(ctx context.Context, address, benchmark string) (addressMatch, error) {
	params := url.Values{
		"address":   {address},
		"benchmark": {benchmark},
		"vintage":   {vintageCurrent},
		"layers":    {"all"},
		"format":    {"json"},
	}
	u := c.baseURL + "/geocoder/geographies/onelineaddress?" + params.Encode()

	var body struct {
		Result struct {
			AddressMatches []addressMatch `json:"addressMatches"`
		} `json:"result"`
	}
	if err := c.getJSON(ctx, u, &body); err != nil {
		return addressMatch{}, err
	}
	if len(body.Result.AddressMatches) == 0 {
		return addressMatch{}, nil
	}
	return body.Result.AddressMatches[0], nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.UpstreamError{Provider: providerName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &domain.UpstreamError{
			Provider: providerName,
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("unexpected status"),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.UpstreamError{Provider: providerName, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// Census API response types. The geography bundle is a map whose keys are
// vintage-specific human-readable layer names.

type geographies map[string][]layerItem

type layerItem struct {
	Stusab   string `json:"STUSAB"`
	Basename string `json:"BASENAME"`
}

type coordinates struct {
	X float64 `json:"x"` // longitude
	Y float64 `json:"y"` // latitude
}

type addressMatch struct {
	Coordinates coordinates `json:"coordinates"`
	Geographies geographies `json:"geographies"`
}
