package domain

// LocationFix is the resolved geographic context for one lookup input.
// It is created by the resolver, never mutated afterwards, and cached
// keyed by the raw input string.
type LocationFix struct {
	Input     string // original ZIP or address, the cache key
	StateAbbr string // two-letter, required for all downstream lookups
	StateFull string
	PlaceName string
	Lat       float64
	Lon       float64
	HasCoords bool
	District  *int // 0 means at-large; nil means unresolved
}

// DistrictFix is what the district geocoder returns for one query:
// the state and congressional district, plus coordinates when the
// forward path produced them.
type DistrictFix struct {
	StateAbbr string
	District  int
	Lat       float64
	Lon       float64
	HasCoords bool
}

// ZipPlace is the ZIP-to-geo provider's view of a postal code.
type ZipPlace struct {
	Lat       float64
	Lon       float64
	StateAbbr string
	StateFull string
	PlaceName string
}

// Lookup is one assembled civic lookup result: the resolved location and
// the deduplicated, precedence-ordered officials list.
type Lookup struct {
	Input     string
	Fix       LocationFix
	Officials []Official
}

// WeatherReport is the current-conditions snapshot for a resolved location.
type WeatherReport struct {
	Fix          LocationFix
	TemperatureC float64
	WindSpeedKmh float64
	WeatherCode  int
	ObservedAt   string
}
