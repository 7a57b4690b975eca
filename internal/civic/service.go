// Package civic orchestrates one lookup: resolve the location, fan out to
// the official-data providers, normalize, deduplicate, and rank. Provider
// failures degrade to empty slots; only a fully empty aggregate escalates
// to a request-level error.
package civic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/eaglereach/civic-data-service/internal/adapter/kafka"
	"github.com/eaglereach/civic-data-service/internal/cache"
	"github.com/eaglereach/civic-data-service/internal/domain"
	"github.com/eaglereach/civic-data-service/internal/observability"
)

// LocationResolver is the resolver seam, satisfied by resolver.Resolver.
type LocationResolver interface {
	Resolve(ctx context.Context, input string) (domain.LocationFix, error)
}

// AuditPublisher records completed lookups. Publishing must not affect
// the lookup outcome.
type AuditPublisher interface {
	Publish(ctx context.Context, audit kafka.LookupAudit)
}

// Service is the civic lookup facade.
type Service struct {
	resolver  LocationResolver
	directory domain.LegislatorDirectory
	local     domain.LocalExecutiveFinder // nil disables the mayor slot
	roles     domain.RoleAggregator       // nil disables the aggregator path
	weather   domain.WeatherProvider      // nil disables the weather endpoint

	results   *cache.Cache[domain.Lookup]
	resultTTL time.Duration

	audit    AuditPublisher // nil disables audit publishing
	demoMode bool

	metrics *observability.Metrics
	logger  *slog.Logger
}

// Options carries the optional collaborators.
type Options struct {
	Local    domain.LocalExecutiveFinder
	Roles    domain.RoleAggregator
	Weather  domain.WeatherProvider
	Audit    AuditPublisher
	DemoMode bool
}

// New creates a Service.
func New(
	resolver LocationResolver,
	directory domain.LegislatorDirectory,
	results *cache.Cache[domain.Lookup],
	resultTTL time.Duration,
	opts Options,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		resolver:  resolver,
		directory: directory,
		local:     opts.Local,
		roles:     opts.Roles,
		weather:   opts.Weather,
		results:   results,
		resultTTL: resultTTL,
		audit:     opts.Audit,
		demoMode:  opts.DemoMode,
		metrics:   metrics,
		logger:    logger,
	}
}

// Lookup resolves input to its officials. Successful results are cached
// under the raw input for the result TTL, so repeating a lookup within
// the window triggers no upstream calls.
func (s *Service) Lookup(ctx context.Context, input string) (domain.Lookup, error) {
	start := time.Now()

	if s.demoMode {
		return demoLookup(input), nil
	}

	if result, ok := s.results.Get(input); ok {
		s.metrics.CacheLookups.WithLabelValues("result", "hit").Inc()
		s.publishAudit(result, "ok", true, start)
		return result, nil
	}
	s.metrics.CacheLookups.WithLabelValues("result", "miss").Inc()

	result, err := s.lookup(ctx, input)
	s.metrics.LookupDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		outcome := classifyOutcome(err)
		s.metrics.LookupsTotal.WithLabelValues(outcome).Inc()
		s.publishAudit(domain.Lookup{Input: input}, outcome, false, start)
		return domain.Lookup{}, err
	}

	s.results.Set(input, result, s.resultTTL)
	s.metrics.LookupsTotal.WithLabelValues("ok").Inc()
	s.metrics.OfficialsCount.Observe(float64(len(result.Officials)))
	s.publishAudit(result, "ok", false, start)
	return result, nil
}

func (s *Service) lookup(ctx context.Context, input string) (domain.Lookup, error) {
	fix, err := s.resolver.Resolve(ctx, input)
	if err != nil {
		return domain.Lookup{}, err
	}

	officials := s.fetchOfficials(ctx, fix)
	if len(officials) == 0 {
		return domain.Lookup{}, fmt.Errorf("state %s district %v: %w",
			fix.StateAbbr, districtLabel(fix), domain.ErrAllUpstreamsFailed)
	}

	officials = dedupeOfficials(officials)
	for i := range officials {
		officials[i].EnsureURL()
	}
	sort.SliceStable(officials, func(i, j int) bool {
		return officials[i].Office.Precedence() < officials[j].Office.Precedence()
	})

	return domain.Lookup{Input: input, Fix: fix, Officials: officials}, nil
}

// fetchOfficials fans out to the configured providers. The senators and
// local-executive queries run concurrently; the representative query also
// starts immediately because the district is already known once the
// resolver has succeeded. Each slot is fault isolated: a provider error
// degrades that slot to empty.
func (s *Service) fetchOfficials(ctx context.Context, fix domain.LocationFix) []domain.Official {
	// Aggregator path first when configured; any failure or empty answer
	// falls through to the free federal path.
	if s.roles != nil && fix.HasCoords {
		officials, err := s.roles.PeopleByLocation(ctx, fix.Lat, fix.Lon)
		if err != nil {
			s.logger.Warn("role aggregator failed, falling back to federal path",
				"input", fix.Input, "error", err)
		} else if len(officials) > 0 {
			return officials
		}
	}

	var (
		wg       sync.WaitGroup
		senators []domain.Official
		rep      *domain.Official
		mayor    *domain.Official
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		senators, err = s.directory.SenatorsFor(ctx, fix.StateAbbr)
		if err != nil {
			s.logger.Warn("senators lookup failed", "state", fix.StateAbbr, "error", err)
			senators = nil
		}
	}()

	if fix.District != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var err error
			rep, err = s.directory.RepresentativeFor(ctx, fix.StateAbbr, *fix.District)
			if err != nil {
				s.logger.Warn("representative lookup failed",
					"state", fix.StateAbbr, "district", *fix.District, "error", err)
				rep = nil
			}
		}()
	}

	if s.local != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var err error
			mayor, err = s.local.MayorFor(ctx, fix.PlaceName, fix.StateFull, fix.StateAbbr)
			if err != nil {
				s.logger.Warn("local executive lookup failed",
					"place", fix.PlaceName, "state", fix.StateAbbr, "error", err)
				mayor = nil
			}
		}()
	}

	wg.Wait()

	officials := make([]domain.Official, 0, len(senators)+2)
	officials = append(officials, senators...)
	if rep != nil {
		officials = append(officials, *rep)
	}
	if mayor != nil {
		officials = append(officials, *mayor)
	}
	return officials
}

// Weather resolves the input and fetches current conditions for it.
func (s *Service) Weather(ctx context.Context, input string) (domain.WeatherReport, error) {
	if s.weather == nil {
		return domain.WeatherReport{}, fmt.Errorf("weather: %w", domain.ErrAllUpstreamsFailed)
	}

	fix, err := s.resolver.Resolve(ctx, input)
	if err != nil {
		return domain.WeatherReport{}, err
	}
	if !fix.HasCoords {
		return domain.WeatherReport{}, fmt.Errorf("no coordinates for %q: %w", input, domain.ErrNotFound)
	}

	report, err := s.weather.Current(ctx, fix.Lat, fix.Lon)
	if err != nil {
		return domain.WeatherReport{}, err
	}
	report.Fix = fix
	return report, nil
}

func (s *Service) publishAudit(result domain.Lookup, outcome string, cached bool, start time.Time) {
	if s.audit == nil {
		return
	}
	audit := kafka.LookupAudit{
		Input:      result.Input,
		StateAbbr:  result.Fix.StateAbbr,
		District:   result.Fix.District,
		Officials:  len(result.Officials),
		Outcome:    outcome,
		Cached:     cached,
		DurationMS: time.Since(start).Milliseconds(),
		At:         time.Now().UTC(),
	}
	// Detached from the request: an abandoned client must not cancel the
	// audit write.
	go s.audit.Publish(context.Background(), audit)
}

// dedupeOfficials drops repeated (name, office) pairs, keeping the first
// occurrence. Overlapping providers can return the same person twice.
func dedupeOfficials(officials []domain.Official) []domain.Official {
	type key struct {
		name   string
		office domain.Office
	}
	seen := make(map[key]struct{}, len(officials))
	out := officials[:0]
	for _, o := range officials {
		k := key{name: o.Name, office: o.Office}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, o)
	}
	return out
}

func classifyOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrAllUpstreamsFailed):
		return "unavailable"
	default:
		return "error"
	}
}

func districtLabel(fix domain.LocationFix) string {
	if fix.District == nil {
		return "unknown"
	}
	return strconv.Itoa(*fix.District)
}

// demoLookup returns a canned Illinois result for demos and judging,
// avoiding every upstream call.
func demoLookup(input string) domain.Lookup {
	district := 13
	return domain.Lookup{
		Input: input,
		Fix: domain.LocationFix{
			Input:     input,
			StateAbbr: "IL",
			StateFull: "Illinois",
			PlaceName: "Springfield",
			District:  &district,
		},
		Officials: []domain.Official{
			{Name: "Richard J. Durbin", Office: domain.OfficeSenator, State: "IL",
				URLs: []string{"https://www.durbin.senate.gov/"}},
			{Name: "Tammy Duckworth", Office: domain.OfficeSenator, State: "IL",
				URLs: []string{"https://www.duckworth.senate.gov/"}},
			{Name: "Nikki Budzinski", Office: domain.OfficeRepresentative, State: "IL", District: "13",
				URLs: []string{"https://budzinski.house.gov/"}},
		},
	}
}
