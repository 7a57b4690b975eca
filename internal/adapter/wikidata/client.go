// Package wikidata implements domain.LocalExecutiveFinder with a SPARQL
// query against the Wikidata query service. The lookup is best effort:
// smaller municipalities often have no head-of-government statement, and
// an empty result is a normal answer rather than a failure.
package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/eaglereach/civic-data-service/internal/domain"
	"github.com/eaglereach/civic-data-service/internal/observability"
)

const providerName = "wikidata"

// Client queries Wikidata for the mayor-equivalent of a US place.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Wikidata SPARQL client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		metrics:    metrics,
		logger:     logger,
	}
}

// MayorFor returns the head of government for a place, or nil when
// Wikidata has no answer.
func (c *Client) MayorFor(ctx context.Context, place, stateFull, stateAbbr string) (*domain.Official, error) {
	if place == "" || stateFull == "" {
		return nil, nil
	}

	start := time.Now()
	official, err := c.query(ctx, place, stateFull, stateAbbr)
	c.metrics.UpstreamDuration.WithLabelValues(providerName).Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.UpstreamRequests.WithLabelValues(providerName, "error").Inc()
	case official == nil:
		c.metrics.UpstreamRequests.WithLabelValues(providerName, "empty").Inc()
	default:
		c.metrics.UpstreamRequests.WithLabelValues(providerName, "success").Inc()
	}
	return official, err
}

func (c *Client) query(ctx context.Context, place, stateFull, stateAbbr string) (*domain.Official, error) {
	// P131: located in admin entity, P6: head of government, P856: website.
	sparql := fmt.Sprintf(`SELECT ?mayorLabel ?website WHERE {
  ?city rdfs:label %q@en .
  ?city wdt:P131* ?state .
  ?state rdfs:label %q@en .
  ?city wdt:P6 ?mayor .
  OPTIONAL { ?mayor wdt:P856 ?website . }
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
} LIMIT 1`, place, stateFull)

	params := url.Values{
		"query":  {sparql},
		"format": {"json"},
	}
	u := c.baseURL + "/sparql?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Provider: providerName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.UpstreamError{
			Provider: providerName,
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("unexpected status"),
		}
	}

	var body sparqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &domain.UpstreamError{Provider: providerName, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(body.Results.Bindings) == 0 {
		return nil, nil
	}

	official := fromBinding(body.Results.Bindings[0], stateAbbr)
	if official == nil {
		return nil, nil
	}
	return official, nil
}

// fromBinding normalizes one SPARQL result row. A row whose label is a
// bare entity id (no English label) is discarded rather than shown raw.
func fromBinding(b binding, stateAbbr string) *domain.Official {
	name := strings.TrimSpace(b.MayorLabel.Value)
	if name == "" || strings.HasPrefix(name, "Q") && !strings.Contains(name, " ") {
		return nil
	}

	o := &domain.Official{
		Name:      name,
		Office:    domain.OfficeMayor,
		State:     stateAbbr,
		SourceIDs: map[string]string{"wikidata": name},
	}
	o.AddURL(b.Website.Value)
	o.EnsureURL()
	return o
}

// SPARQL JSON result types.

type sparqlResponse struct {
	Results struct {
		Bindings []binding `json:"bindings"`
	} `json:"results"`
}

type binding struct {
	MayorLabel literal `json:"mayorLabel"`
	Website    literal `json:"website"`
}

type literal struct {
	Value string `json:"value"`
}
