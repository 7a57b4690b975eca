// Package resolver turns a raw lookup input (5-digit ZIP or free-text
// street address) into a LocationFix, consulting the TTL caches before
// any upstream call.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/eaglereach/civic-data-service/internal/cache"
	"github.com/eaglereach/civic-data-service/internal/domain"
	"github.com/eaglereach/civic-data-service/internal/observability"
)

// Resolver resolves lookup inputs to geographic context. Location fixes
// are cached under the raw input string; ZIP sub-lookups are cached
// separately and longer, since ZIP geography changes even more rarely
// than district boundaries.
type Resolver struct {
	zips      domain.ZipGeocoder
	districts domain.DistrictGeocoder

	fixes    *cache.Cache[domain.LocationFix]
	zipCache *cache.Cache[domain.ZipPlace]
	fixTTL   time.Duration
	zipTTL   time.Duration

	metrics *observability.Metrics
	logger  *slog.Logger
}

// New creates a Resolver.
func New(
	zips domain.ZipGeocoder,
	districts domain.DistrictGeocoder,
	fixes *cache.Cache[domain.LocationFix],
	zipCache *cache.Cache[domain.ZipPlace],
	fixTTL, zipTTL time.Duration,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Resolver {
	return &Resolver{
		zips:      zips,
		districts: districts,
		fixes:     fixes,
		zipCache:  zipCache,
		fixTTL:    fixTTL,
		zipTTL:    zipTTL,
		metrics:   metrics,
		logger:    logger,
	}
}

// Resolve classifies the input and produces a LocationFix. Errors:
// domain.ErrInvalidInput for malformed input, domain.ErrNotFound when no
// geocoder recognizes it, domain.UpstreamError when a geocoder fails.
func (r *Resolver) Resolve(ctx context.Context, input string) (domain.LocationFix, error) {
	input = strings.TrimSpace(input)

	kind := classify(input)
	if kind == inputInvalid {
		return domain.LocationFix{}, fmt.Errorf("input %q: %w", input, domain.ErrInvalidInput)
	}

	if fix, ok := r.fixes.Get(input); ok {
		r.metrics.CacheLookups.WithLabelValues("location", "hit").Inc()
		return fix, nil
	}
	r.metrics.CacheLookups.WithLabelValues("location", "miss").Inc()

	var (
		fix domain.LocationFix
		err error
	)
	if kind == inputZip {
		fix, err = r.resolveZip(ctx, input)
	} else {
		fix, err = r.resolveAddress(ctx, input)
	}
	if err != nil {
		return domain.LocationFix{}, err
	}

	r.fixes.Set(input, fix, r.fixTTL)
	r.logger.Debug("location resolved",
		"input", input, "state", fix.StateAbbr, "district", *fix.District)
	return fix, nil
}

func (r *Resolver) resolveZip(ctx context.Context, zip string) (domain.LocationFix, error) {
	place, ok := r.zipCache.Get(zip)
	if ok {
		r.metrics.CacheLookups.WithLabelValues("zip", "hit").Inc()
	} else {
		r.metrics.CacheLookups.WithLabelValues("zip", "miss").Inc()
		var err error
		place, err = r.zips.Lookup(ctx, zip)
		if err != nil {
			return domain.LocationFix{}, err
		}
		r.zipCache.Set(zip, place, r.zipTTL)
	}

	dfix, err := r.districts.DistrictForCoordinates(ctx, place.Lat, place.Lon)
	if err != nil {
		return domain.LocationFix{}, err
	}

	district := dfix.District
	return domain.LocationFix{
		Input: zip,
		// The Census layer bundle is authoritative for the state; the ZIP
		// provider contributes the full name and place for display.
		StateAbbr: dfix.StateAbbr,
		StateFull: place.StateFull,
		PlaceName: place.PlaceName,
		Lat:       place.Lat,
		Lon:       place.Lon,
		HasCoords: true,
		District:  &district,
	}, nil
}

func (r *Resolver) resolveAddress(ctx context.Context, address string) (domain.LocationFix, error) {
	dfix, err := r.districts.DistrictForAddress(ctx, address)
	if err != nil {
		return domain.LocationFix{}, err
	}

	district := dfix.District
	return domain.LocationFix{
		Input:     address,
		StateAbbr: dfix.StateAbbr,
		Lat:       dfix.Lat,
		Lon:       dfix.Lon,
		HasCoords: dfix.HasCoords,
		District:  &district,
	}, nil
}

type inputKind int

const (
	inputInvalid inputKind = iota
	inputZip
	inputAddress
)

// classify decides how to treat the raw input. A bare 5-digit numeral is
// a ZIP; any other all-digit string is a malformed ZIP. A street address
// must have at least two tokens ("abc" alone is not geocodable).
func classify(input string) inputKind {
	if input == "" {
		return inputInvalid
	}
	if allDigits(input) {
		if len(input) == 5 {
			return inputZip
		}
		return inputInvalid
	}
	if len(strings.Fields(input)) < 2 {
		return inputInvalid
	}
	return inputAddress
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
