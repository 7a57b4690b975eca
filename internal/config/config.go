package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Providers holds the upstream endpoints and per-provider request
// timeouts. Defaults point at the public free APIs; a YAML file named by
// CIVIC_PROVIDERS_FILE can override any subset, which is how tests and
// mirror deployments repoint the adapters.
type Providers struct {
	ZippoBaseURL     string `yaml:"zippo_base_url"`
	CensusBaseURL    string `yaml:"census_base_url"`
	LegislatorsURL   string `yaml:"legislators_url"`
	WikidataBaseURL  string `yaml:"wikidata_base_url"`
	RoleAPIBaseURL   string `yaml:"role_api_base_url"`
	OpenMeteoBaseURL string `yaml:"open_meteo_base_url"`

	ZippoTimeout    time.Duration `yaml:"-"`
	CensusTimeout   time.Duration `yaml:"-"`
	RosterTimeout   time.Duration `yaml:"-"`
	WikidataTimeout time.Duration `yaml:"-"`
	RoleAPITimeout  time.Duration `yaml:"-"`
	WeatherTimeout  time.Duration `yaml:"-"`
}

// UnmarshalYAML overlays a providers file onto the defaults already set on
// the receiver. Timeouts are written as Go duration strings ("5s", "1m").
func (p *Providers) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		ZippoBaseURL     string `yaml:"zippo_base_url"`
		CensusBaseURL    string `yaml:"census_base_url"`
		LegislatorsURL   string `yaml:"legislators_url"`
		WikidataBaseURL  string `yaml:"wikidata_base_url"`
		RoleAPIBaseURL   string `yaml:"role_api_base_url"`
		OpenMeteoBaseURL string `yaml:"open_meteo_base_url"`

		ZippoTimeout    string `yaml:"zippo_timeout"`
		CensusTimeout   string `yaml:"census_timeout"`
		RosterTimeout   string `yaml:"roster_timeout"`
		WikidataTimeout string `yaml:"wikidata_timeout"`
		RoleAPITimeout  string `yaml:"role_api_timeout"`
		WeatherTimeout  string `yaml:"weather_timeout"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	for dst, src := range map[*string]string{
		&p.ZippoBaseURL:     raw.ZippoBaseURL,
		&p.CensusBaseURL:    raw.CensusBaseURL,
		&p.LegislatorsURL:   raw.LegislatorsURL,
		&p.WikidataBaseURL:  raw.WikidataBaseURL,
		&p.RoleAPIBaseURL:   raw.RoleAPIBaseURL,
		&p.OpenMeteoBaseURL: raw.OpenMeteoBaseURL,
	} {
		if src != "" {
			*dst = src
		}
	}

	for dst, src := range map[*time.Duration]string{
		&p.ZippoTimeout:    raw.ZippoTimeout,
		&p.CensusTimeout:   raw.CensusTimeout,
		&p.RosterTimeout:   raw.RosterTimeout,
		&p.WikidataTimeout: raw.WikidataTimeout,
		&p.RoleAPITimeout:  raw.RoleAPITimeout,
		&p.WeatherTimeout:  raw.WeatherTimeout,
	} {
		if src == "" {
			continue
		}
		d, err := time.ParseDuration(src)
		if err != nil {
			return fmt.Errorf("invalid provider timeout %q: %w", src, err)
		}
		*dst = d
	}
	return nil
}

// Config holds all service settings, populated from environment variables
// (with an optional .env file) and the optional providers YAML file.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	DemoMode        bool

	Providers Providers

	// Cache TTLs. Location fixes outlive official results because
	// geography changes far more rarely than officeholders.
	ResultTTL   time.Duration
	LocationTTL time.Duration
	ZipTTL      time.Duration
	RosterTTL   time.Duration

	// Role-aggregator path is enabled only when a key is present.
	RoleAPIKey string

	// Lookup audit publishing (feature-flagged via KAFKA_BROKERS).
	KafkaBrokers    []string
	KafkaAuditTopic string
	AuditEnabled    bool
}

// Load reads configuration, applying defaults where unset. A .env file in
// the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	providers, err := loadProviders()
	if err != nil {
		return nil, err
	}

	resultTTL, err := parseDuration("RESULT_CACHE_TTL", "1h")
	if err != nil {
		return nil, err
	}
	locationTTL, err := parseDuration("LOCATION_CACHE_TTL", "6h")
	if err != nil {
		return nil, err
	}
	zipTTL, err := parseDuration("ZIP_CACHE_TTL", "24h")
	if err != nil {
		return nil, err
	}
	rosterTTL, err := parseDuration("ROSTER_CACHE_TTL", "1h")
	if err != nil {
		return nil, err
	}

	brokers := splitList(os.Getenv("KAFKA_BROKERS"))

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		AllowedOrigins:  splitList(os.Getenv("ALLOWED_ORIGINS")),
		DemoMode:        os.Getenv("DEMO_MODE") == "true",

		Providers: providers,

		ResultTTL:   resultTTL,
		LocationTTL: locationTTL,
		ZipTTL:      zipTTL,
		RosterTTL:   rosterTTL,

		RoleAPIKey: os.Getenv("ROLE_API_KEY"),

		KafkaBrokers:    brokers,
		KafkaAuditTopic: envOrDefault("KAFKA_AUDIT_TOPIC", "civic-lookup-audit"),
		AuditEnabled:    len(brokers) > 0,
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("HTTP_ADDR is required")
	}
	if cfg.AuditEnabled && cfg.KafkaAuditTopic == "" {
		return nil, errors.New("KAFKA_AUDIT_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func loadProviders() (Providers, error) {
	p := Providers{
		ZippoBaseURL:     "https://api.zippopotam.us",
		CensusBaseURL:    "https://geocoding.geo.census.gov",
		LegislatorsURL:   "https://unitedstates.github.io/congress-legislators/legislators-current.json",
		WikidataBaseURL:  "https://query.wikidata.org",
		RoleAPIBaseURL:   "https://v3.openstates.org",
		OpenMeteoBaseURL: "https://api.open-meteo.com",

		ZippoTimeout:    10 * time.Second,
		CensusTimeout:   20 * time.Second,
		RosterTimeout:   30 * time.Second,
		WikidataTimeout: 15 * time.Second,
		RoleAPITimeout:  20 * time.Second,
		WeatherTimeout:  10 * time.Second,
	}

	path := os.Getenv("CIVIC_PROVIDERS_FILE")
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Providers{}, fmt.Errorf("read CIVIC_PROVIDERS_FILE: %w", err)
		}
		if err := yaml.Unmarshal(data, &p); err != nil {
			return Providers{}, fmt.Errorf("parse CIVIC_PROVIDERS_FILE: %w", err)
		}
	}

	for name, timeout := range map[string]time.Duration{
		"zippo":    p.ZippoTimeout,
		"census":   p.CensusTimeout,
		"roster":   p.RosterTimeout,
		"wikidata": p.WikidataTimeout,
		"role_api": p.RoleAPITimeout,
		"weather":  p.WeatherTimeout,
	} {
		if timeout <= 0 {
			return Providers{}, fmt.Errorf("provider timeout %s must be positive", name)
		}
	}

	return p, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	raw := envOrDefault(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return d, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
