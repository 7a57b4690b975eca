package domain

import "context"

// ZipGeocoder resolves a 5-digit ZIP to coordinates and place details.
type ZipGeocoder interface {
	Lookup(ctx context.Context, zip string) (ZipPlace, error)
}

// DistrictGeocoder resolves coordinates or a street address to a state
// abbreviation and congressional district number.
type DistrictGeocoder interface {
	// DistrictForCoordinates reverse geocodes a point.
	DistrictForCoordinates(ctx context.Context, lat, lon float64) (DistrictFix, error)

	// DistrictForAddress forward geocodes a oneline street address.
	DistrictForAddress(ctx context.Context, address string) (DistrictFix, error)
}

// LegislatorDirectory answers who currently represents a state or district
// in Congress.
type LegislatorDirectory interface {
	// SenatorsFor returns the currently serving senators for a state,
	// capped at two.
	SenatorsFor(ctx context.Context, state string) ([]Official, error)

	// RepresentativeFor returns the House member for a state and district,
	// or nil when no currently serving member matches.
	RepresentativeFor(ctx context.Context, state string, district int) (*Official, error)
}

// LocalExecutiveFinder locates the mayor-equivalent for a place. Best
// effort: a nil Official with nil error means no answer, not a failure.
type LocalExecutiveFinder interface {
	MayorFor(ctx context.Context, place, stateFull, stateAbbr string) (*Official, error)
}

// RoleAggregator is an alternate officials source keyed by coordinates,
// used when an API key is configured and soft-falling back to the free
// federal path on any failure.
type RoleAggregator interface {
	PeopleByLocation(ctx context.Context, lat, lon float64) ([]Official, error)
}

// WeatherProvider fetches current conditions for a point.
type WeatherProvider interface {
	Current(ctx context.Context, lat, lon float64) (WeatherReport, error)
}
