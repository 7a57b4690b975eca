// Package openmeteo implements domain.WeatherProvider against the keyless
// Open-Meteo forecast API. One fetch, one reshape; no retries.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/eaglereach/civic-data-service/internal/domain"
	"github.com/eaglereach/civic-data-service/internal/observability"
)

const providerName = "open_meteo"

// Client fetches current conditions for a point.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		metrics:    metrics,
		logger:     logger,
	}
}

// Current returns the current-weather snapshot for a coordinate pair.
func (c *Client) Current(ctx context.Context, lat, lon float64) (domain.WeatherReport, error) {
	start := time.Now()
	report, err := c.fetch(ctx, lat, lon)
	c.metrics.UpstreamDuration.WithLabelValues(providerName).Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(providerName, "error").Inc()
		return domain.WeatherReport{}, err
	}
	c.metrics.UpstreamRequests.WithLabelValues(providerName, "success").Inc()
	return report, nil
}

func (c *Client) fetch(ctx context.Context, lat, lon float64) (domain.WeatherReport, error) {
	params := url.Values{
		"latitude":        {fmt.Sprintf("%f", lat)},
		"longitude":       {fmt.Sprintf("%f", lon)},
		"current_weather": {"true"},
	}
	u := c.baseURL + "/v1/forecast?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.WeatherReport{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WeatherReport{}, &domain.UpstreamError{Provider: providerName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.WeatherReport{}, &domain.UpstreamError{
			Provider: providerName,
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("unexpected status"),
		}
	}

	var body struct {
		CurrentWeather struct {
			Temperature float64 `json:"temperature"`
			WindSpeed   float64 `json:"windspeed"`
			WeatherCode int     `json:"weathercode"`
			Time        string  `json:"time"`
		} `json:"current_weather"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.WeatherReport{}, &domain.UpstreamError{Provider: providerName, Err: fmt.Errorf("decode response: %w", err)}
	}

	return domain.WeatherReport{
		TemperatureC: body.CurrentWeather.Temperature,
		WindSpeedKmh: body.CurrentWeather.WindSpeed,
		WeatherCode:  body.CurrentWeather.WeatherCode,
		ObservedAt:   body.CurrentWeather.Time,
	}, nil
}
