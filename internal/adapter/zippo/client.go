// Package zippo implements domain.ZipGeocoder against the keyless
// Zippopotam.us ZIP-to-geo API.
package zippo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/eaglereach/civic-data-service/internal/domain"
	"github.com/eaglereach/civic-data-service/internal/observability"
)

const providerName = "zippopotam"

// Client resolves US ZIP codes to coordinates and place details.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Zippopotam client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		metrics:    metrics,
		logger:     logger,
	}
}

// Lookup resolves a 5-digit ZIP. An unknown ZIP yields domain.ErrNotFound;
// any other failure is a domain.UpstreamError.
func (c *Client) Lookup(ctx context.Context, zip string) (domain.ZipPlace, error) {
	start := time.Now()
	place, err := c.lookup(ctx, zip)
	c.metrics.UpstreamDuration.WithLabelValues(providerName).Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.metrics.UpstreamRequests.WithLabelValues(providerName, "empty").Inc()
	case err != nil:
		c.metrics.UpstreamRequests.WithLabelValues(providerName, "error").Inc()
	default:
		c.metrics.UpstreamRequests.WithLabelValues(providerName, "success").Inc()
	}
	return place, err
}

func (c *Client) lookup(ctx context.Context, zip string) (domain.ZipPlace, error) {
	u := fmt.Sprintf("%s/us/%s", c.baseURL, zip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.ZipPlace{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ZipPlace{}, &domain.UpstreamError{Provider: providerName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ZipPlace{}, fmt.Errorf("zip %s: %w", zip, domain.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.ZipPlace{}, &domain.UpstreamError{
			Provider: providerName,
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("unexpected status"),
		}
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.ZipPlace{}, &domain.UpstreamError{Provider: providerName, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(body.Places) == 0 {
		return domain.ZipPlace{}, fmt.Errorf("no place for zip %s: %w", zip, domain.ErrNotFound)
	}

	p := body.Places[0]
	lat, err := strconv.ParseFloat(p.Latitude, 64)
	if err != nil {
		return domain.ZipPlace{}, &domain.UpstreamError{Provider: providerName, Err: fmt.Errorf("parse latitude %q: %w", p.Latitude, err)}
	}
	lon, err := strconv.ParseFloat(p.Longitude, 64)
	if err != nil {
		return domain.ZipPlace{}, &domain.UpstreamError{Provider: providerName, Err: fmt.Errorf("parse longitude %q: %w", p.Longitude, err)}
	}

	return domain.ZipPlace{
		Lat:       lat,
		Lon:       lon,
		StateAbbr: p.StateAbbreviation,
		StateFull: p.State,
		PlaceName: p.PlaceName,
	}, nil
}

// Zippopotam API response types. Coordinates arrive as strings.

type response struct {
	Places []place `json:"places"`
}

type place struct {
	PlaceName         string `json:"place name"`
	Latitude          string `json:"latitude"`
	Longitude         string `json:"longitude"`
	State             string `json:"state"`
	StateAbbreviation string `json:"state abbreviation"`
}
