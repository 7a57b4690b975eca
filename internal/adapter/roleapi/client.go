// Package roleapi implements domain.RoleAggregator against an
// OpenStates-compatible people.geo API. It is an alternate officials
// source, enabled only when an API key is configured; the service soft
// falls back to the free federal path when it fails.
package roleapi

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

const providerName = "role_aggregator"

// Client queries a role-aggregator people.geo endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a role-aggregator client.
func NewClient(baseURL, apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		metrics:    metrics,
		logger:     logger,
	}
}

// PeopleByLocation returns the officials whose roles cover a point. Odd
// records are skipped rather than failing the whole call.
func (c *Client) PeopleByLocation(ctx context.Context, lat, lon float64) ([]domain.Official, error) {
	start := time.Now()
	officials, err := c.fetch(ctx, lat, lon)
	c.metrics.UpstreamDuration.WithLabelValues(providerName).Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.UpstreamRequests.WithLabelValues(providerName, "error").Inc()
	case len(officials) == 0:
		c.metrics.UpstreamRequests.WithLabelValues(providerName, "empty").Inc()
	default:
		c.metrics.UpstreamRequests.WithLabelValues(providerName, "success").Inc()
	}
	return officials, err
}

func (c *Client) fetch(ctx context.Context, lat, lon float64) ([]domain.Official, error) {
	params := url.Values{
		"lat":      {fmt.Sprintf("%f", lat)},
		"lng":      {fmt.Sprintf("%f", lon)},
		"per_page": {"10"},
	}
	u := c.baseURL + "/people.geo?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)

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

	var body struct {
		Results []personRecord `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &domain.UpstreamError{Provider: providerName, Err: fmt.Errorf("decode response: %w", err)}
	}

	officials := make([]domain.Official, 0, len(body.Results))
	for _, item := range body.Results {
		official, ok := fromPersonRecord(item)
		if !ok {
			c.logger.Debug("skipping role record without a name", "id", item.ID)
			continue
		}
		officials = append(officials, official)
	}
	return officials, nil
}

// fromPersonRecord normalizes one people.geo item. Website preference:
// the explicit website field, then the aggregator profile link, then the
// synthesized search fallback.
func fromPersonRecord(item personRecord) (domain.Official, bool) {
	name := strings.TrimSpace(item.GivenName + " " + item.FamilyName)
	if name == "" {
		name = strings.TrimSpace(item.Name)
	}
	if name == "" {
		return domain.Official{}, false
	}

	office, label := classifyRole(item)

	o := domain.Official{
		Name:        name,
		Office:      office,
		OfficeLabel: label,
		Party:       item.Party,
		PhotoURL:    item.Image,
	}
	if item.Jurisdiction.Classification == "state" {
		o.State = item.Jurisdiction.Name
	}
	if item.CurrentRole.District != "" {
		o.District = string(item.CurrentRole.District)
	}

	o.AddURL(item.Website)
	o.AddURL(item.ProfileURL)
	o.EnsureURL()

	o.AddEmail(item.Email)
	if item.Email == "" {
		o.AddEmail(item.CurrentRole.Email)
	}
	if item.ID != "" {
		o.SourceIDs = map[string]string{"role_aggregator": item.ID}
	}
	return o, true
}

// classifyRole maps jurisdiction classification and role title onto the
// office enum. Federal senators and representatives get the canonical
// offices; everything else keeps its title as a free-text label.
func classifyRole(item personRecord) (domain.Office, string) {
	title := item.CurrentRole.Title
	if title == "" {
		title = "Representative"
	}

	if item.Jurisdiction.Classification == "country" {
		switch strings.ToLower(title) {
		case "senator":
			return domain.OfficeSenator, ""
		case "representative":
			return domain.OfficeRepresentative, ""
		}
		return domain.OfficeOther, "US " + title
	}
	if strings.EqualFold(title, "mayor") {
		return domain.OfficeMayor, ""
	}
	return domain.OfficeOther, title
}

// people.geo response types.

type personRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	GivenName    string `json:"given_name"`
	FamilyName   string `json:"family_name"`
	Party        string `json:"party"`
	Image        string `json:"image"`
	Email        string `json:"email"`
	Website      string `json:"website"`
	ProfileURL   string `json:"openstates_url"`
	Jurisdiction struct {
		Name           string `json:"name"`
		Classification string `json:"classification"` // "country", "state", "local"
	} `json:"jurisdiction"`
	CurrentRole struct {
		Title    string     `json:"title"`
		District flexString `json:"district"`
		Email    string     `json:"email"`
	} `json:"current_role"`
}

// flexString absorbs fields the aggregator serves as either a string or a
// number depending on the record.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*f = ""
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*f = flexString(v)
		return nil
	}
	*f = flexString(s)
	return nil
}
