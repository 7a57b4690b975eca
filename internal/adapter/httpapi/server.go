// Package httpapi is the HTTP surface of the civic lookup service. It is
// a thin transport layer: input extraction, error-to-status mapping, and
// response shaping live here; everything else is the service's job.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eaglereach/civic-data-service/internal/domain"
)

// LookupService is the civic facade the handlers call.
type LookupService interface {
	Lookup(ctx context.Context, input string) (domain.Lookup, error)
	Weather(ctx context.Context, input string) (domain.WeatherReport, error)
}

// Server exposes the lookup, weather, health, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	service    LookupService
	logger     *slog.Logger
}

// NewServer creates the HTTP server and wires its routes.
func NewServer(addr string, service LookupService, allowedOrigins []string, logger *slog.Logger) *Server {
	s := &Server{
		service: service,
		logger:  logger,
	}

	r := mux.NewRouter()
	r.Use(requestLogging(logger))
	r.Use(corsMiddleware(allowedOrigins))

	r.HandleFunc("/officials", s.handleOfficials).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/weather", s.handleWeather).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/health", handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second, // slow upstreams bound total request latency
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// Response shapes.

type stateBody struct {
	Abbr string `json:"abbr"`
	Name string `json:"name,omitempty"`
}

type coordsBody struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type officialsResponse struct {
	Zip       string            `json:"zip"`
	State     stateBody         `json:"state"`
	Place     string            `json:"place,omitempty"`
	Location  *coordsBody       `json:"location,omitempty"`
	District  *string           `json:"district"`
	Officials []domain.Official `json:"officials"`
}

type weatherResponse struct {
	Zip          string      `json:"zip"`
	Place        string      `json:"place,omitempty"`
	Location     *coordsBody `json:"location,omitempty"`
	TemperatureC float64     `json:"temperature_c"`
	WindSpeedKmh float64     `json:"wind_speed_kmh"`
	WeatherCode  int         `json:"weather_code"`
	ObservedAt   string      `json:"observed_at"`
}

func (s *Server) handleOfficials(w http.ResponseWriter, r *http.Request) {
	input := lookupInput(r)
	if input == "" {
		writeError(w, http.StatusBadRequest, "zip or address query parameter is required")
		return
	}

	result, err := s.service.Lookup(r.Context(), input)
	if err != nil {
		s.writeLookupError(w, r, input, err)
		return
	}

	resp := officialsResponse{
		Zip:       result.Input,
		State:     stateBody{Abbr: result.Fix.StateAbbr, Name: result.Fix.StateFull},
		Place:     result.Fix.PlaceName,
		Officials: result.Officials,
	}
	if result.Fix.HasCoords {
		resp.Location = &coordsBody{Lat: result.Fix.Lat, Lon: result.Fix.Lon}
	}
	if result.Fix.District != nil {
		d := strconv.Itoa(*result.Fix.District)
		resp.District = &d
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	input := lookupInput(r)
	if input == "" {
		writeError(w, http.StatusBadRequest, "zip or address query parameter is required")
		return
	}

	report, err := s.service.Weather(r.Context(), input)
	if err != nil {
		s.writeLookupError(w, r, input, err)
		return
	}

	resp := weatherResponse{
		Zip:          report.Fix.Input,
		Place:        report.Fix.PlaceName,
		TemperatureC: report.TemperatureC,
		WindSpeedKmh: report.WindSpeedKmh,
		WeatherCode:  report.WeatherCode,
		ObservedAt:   report.ObservedAt,
	}
	if report.Fix.HasCoords {
		resp.Location = &coordsBody{Lat: report.Fix.Lat, Lon: report.Fix.Lon}
	}
	writeJSON(w, http.StatusOK, resp)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// lookupInput accepts both ?zip= and ?address=; the two are synonyms and
// the service classifies the raw string itself.
func lookupInput(r *http.Request) string {
	if zip := r.URL.Query().Get("zip"); zip != "" {
		return zip
	}
	return r.URL.Query().Get("address")
}

// writeLookupError maps the error taxonomy onto status codes: invalid
// input 400, unknown location 404, provider outage 502. Internal detail
// stays in the log; the response carries only a short message.
func (s *Server) writeLookupError(w http.ResponseWriter, r *http.Request, input string, err error) {
	var upstreamErr *domain.UpstreamError

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "a 5-digit ZIP code or street address is required")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "no location found for that ZIP or address")
	case errors.Is(err, domain.ErrAllUpstreamsFailed), errors.As(err, &upstreamErr):
		s.logger.Error("lookup failed on upstream data",
			"input", input, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadGateway, "civic data lookup failed, try again shortly")
	default:
		s.logger.Error("lookup failed", "input", input, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
