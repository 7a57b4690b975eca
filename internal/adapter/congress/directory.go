// Package congress implements domain.LegislatorDirectory on top of the
// unitedstates/congress-legislators current-roster JSON, a static dataset
// refreshed by its maintainers a few times a day.
package congress

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/eaglereach/civic-data-service/internal/cache"
	"github.com/eaglereach/civic-data-service/internal/domain"
	"github.com/eaglereach/civic-data-service/internal/observability"
)

const (
	providerName = "congress_roster"
	rosterKey    = "legislators-current"

	// maxSenators floors senator results against duplicate or erroneous
	// roster entries: a state never seats more than two.
	maxSenators = 2
)

// Directory loads and caches the current federal legislator roster and
// answers who represents a state or district today.
type Directory struct {
	httpClient *http.Client
	url        string
	roster     *cache.Cache[[]person]
	rosterTTL  time.Duration
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewDirectory creates a Directory. The roster is fetched lazily on first
// use and kept for rosterTTL; the dataset is large and changes rarely, so
// its cache entry outlives per-lookup results.
func NewDirectory(url string, timeout, rosterTTL time.Duration, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *Directory {
	return &Directory{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		roster:     cache.New[[]person](clock),
		rosterTTL:  rosterTTL,
		clock:      clock,
		metrics:    metrics,
		logger:     logger,
	}
}

// SenatorsFor returns the currently serving senators for a two-letter
// state abbreviation, capped at two.
func (d *Directory) SenatorsFor(ctx context.Context, state string) ([]domain.Official, error) {
	roster, err := d.load(ctx)
	if err != nil {
		return nil, err
	}

	var senators []domain.Official
	for _, p := range roster {
		t, ok := p.latestTerm()
		if !ok || t.Type != "sen" || t.State != state {
			continue
		}
		if !d.currentlyServing(p, t) {
			continue
		}
		senators = append(senators, toOfficial(p, t))
		if len(senators) == maxSenators {
			break
		}
	}
	return senators, nil
}

// RepresentativeFor returns the currently serving House member for a state
// and district, or nil when none matches.
func (d *Directory) RepresentativeFor(ctx context.Context, state string, district int) (*domain.Official, error) {
	roster, err := d.load(ctx)
	if err != nil {
		return nil, err
	}

	for _, p := range roster {
		t, ok := p.latestTerm()
		if !ok || t.Type != "rep" || t.State != state {
			continue
		}
		if t.District == nil || *t.District != district {
			continue
		}
		if !d.currentlyServing(p, t) {
			continue
		}
		official := toOfficial(p, t)
		return &official, nil
	}
	return nil, nil
}

func (d *Directory) load(ctx context.Context) ([]person, error) {
	if roster, ok := d.roster.Get(rosterKey); ok {
		d.metrics.CacheLookups.WithLabelValues("roster", "hit").Inc()
		return roster, nil
	}
	d.metrics.CacheLookups.WithLabelValues("roster", "miss").Inc()

	start := time.Now()
	roster, err := d.fetch(ctx)
	d.metrics.UpstreamDuration.WithLabelValues(providerName).Observe(time.Since(start).Seconds())
	if err != nil {
		d.metrics.UpstreamRequests.WithLabelValues(providerName, "error").Inc()
		return nil, err
	}
	d.metrics.UpstreamRequests.WithLabelValues(providerName, "success").Inc()

	d.roster.Set(rosterKey, roster, d.rosterTTL)
	d.logger.Info("legislator roster loaded", "entries", len(roster))
	return roster, nil
}

func (d *Directory) fetch(ctx context.Context) ([]person, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
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

	var roster []person
	if err := json.NewDecoder(resp.Body).Decode(&roster); err != nil {
		return nil, &domain.UpstreamError{Provider: providerName, Err: fmt.Errorf("decode roster: %w", err)}
	}
	return roster, nil
}

// currentlyServing reports whether the term's end date is today or later.
// An unparsable end date counts as serving; the roster is hand-curated and
// a malformed date is more likely a formatting slip than an expired seat.
func (d *Directory) currentlyServing(p person, t term) bool {
	end, err := time.Parse("2006-01-02", t.End)
	if err != nil {
		d.logger.Warn("unparsable term end date, treating as serving",
			"name", p.fullName(), "end", t.End)
		return true
	}
	today := d.clock.Now().UTC().Truncate(24 * time.Hour)
	return !end.Before(today)
}

func toOfficial(p person, t term) domain.Official {
	office := domain.OfficeRepresentative
	if t.Type == "sen" {
		office = domain.OfficeSenator
	}

	o := domain.Official{
		Name:      p.fullName(),
		Office:    office,
		Party:     t.Party,
		State:     t.State,
		SourceIDs: p.sourceIDs(),
	}
	if t.District != nil {
		o.District = strconv.Itoa(*t.District)
	}
	o.AddPhone(t.Phone)
	o.AddURL(t.URL)
	o.AddURL(t.ContactForm)
	o.EnsureURL()
	return o
}

// Roster JSON types. Only the fields the directory consults are decoded.

type person struct {
	Name  personName                 `json:"name"`
	ID    map[string]json.RawMessage `json:"id"`
	Terms []term                     `json:"terms"`
}

type personName struct {
	First        string `json:"first"`
	Middle       string `json:"middle"`
	Last         string `json:"last"`
	OfficialFull string `json:"official_full"`
}

type term struct {
	Type        string `json:"type"` // "sen" or "rep"
	State       string `json:"state"`
	District    *int   `json:"district"`
	Party       string `json:"party"`
	Phone       string `json:"phone"`
	URL         string `json:"url"`
	ContactForm string `json:"contact_form"`
	End         string `json:"end"`
}

// latestTerm returns the most recent term; earlier terms are history and
// never consulted.
func (p person) latestTerm() (term, bool) {
	if len(p.Terms) == 0 {
		return term{}, false
	}
	return p.Terms[len(p.Terms)-1], true
}

func (p person) fullName() string {
	if p.Name.OfficialFull != "" {
		return p.Name.OfficialFull
	}
	full := p.Name.First
	if p.Name.Middle != "" {
		full += " " + p.Name.Middle
	}
	if p.Name.Last != "" {
		full += " " + p.Name.Last
	}
	return full
}

// sourceIDs flattens the roster's id block (bioguide, govtrack, opensecrets
// and friends) into strings for traceability.
func (p person) sourceIDs() map[string]string {
	if len(p.ID) == 0 {
		return nil
	}
	ids := make(map[string]string, len(p.ID))
	for k, raw := range p.ID {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			ids[k] = s
			continue
		}
		ids[k] = string(raw)
	}
	return ids
}
