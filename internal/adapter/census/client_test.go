package census

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eaglereach/civic-data-service/internal/domain"
	"github.com/eaglereach/civic-data-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(baseURL string) *Client {
	return NewClient(baseURL, 5*time.Second, observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

const reverseBody = `{
	"result": {
		"geographies": {
			"States": [{"STUSAB": "IL", "BASENAME": "Illinois"}],
			"119th Congressional Districts": [{"BASENAME": "7"}]
		}
	}
}`

func TestDistrictForCoordinates_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocoder/geographies/coordinates", r.URL.Path)
		assert.Equal(t, benchmarkCurrent, r.URL.Query().Get("benchmark"))
		assert.Equal(t, "all", r.URL.Query().Get("layers"))
		_, _ = w.Write([]byte(reverseBody))
	}))
	defer srv.Close()

	fix, err := testClient(srv.URL).DistrictForCoordinates(context.Background(), 41.88, -87.62)
	require.NoError(t, err)

	assert.Equal(t, "IL", fix.StateAbbr)
	assert.Equal(t, 7, fix.District)
	assert.True(t, fix.HasCoords)
}

func TestDistrictForAddress_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocoder/geographies/onelineaddress", r.URL.Path)
		assert.Equal(t, "233 S Wacker Dr, Chicago, IL", r.URL.Query().Get("address"))
		_, _ = w.Write([]byte(`{
			"result": {
				"addressMatches": [{
					"coordinates": {"x": -87.6359, "y": 41.8789},
					"geographies": {
						"States": [{"STUSAB": "IL"}],
						"119th Congressional Districts": [{"BASENAME": "7"}]
					}
				}]
			}
		}`))
	}))
	defer srv.Close()

	fix, err := testClient(srv.URL).DistrictForAddress(context.Background(), "233 S Wacker Dr, Chicago, IL")
	require.NoError(t, err)

	assert.Equal(t, "IL", fix.StateAbbr)
	assert.Equal(t, 7, fix.District)
	assert.True(t, fix.HasCoords)
	assert.InDelta(t, 41.8789, fix.Lat, 1e-6)
	assert.InDelta(t, -87.6359, fix.Lon, 1e-6)
}

func TestDistrictForAddress_FallbackBenchmark(t *testing.T) {
	var benchmarks []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		benchmark := r.URL.Query().Get("benchmark")
		benchmarks = append(benchmarks, benchmark)
		if benchmark == benchmarkCurrent {
			_, _ = w.Write([]byte(`{"result": {"addressMatches": []}}`))
			return
		}
		_, _ = w.Write([]byte(`{
			"result": {
				"addressMatches": [{
					"geographies": {
						"States": [{"STUSAB": "MT"}],
						"118th Congressional Districts": [{"BASENAME": "1"}]
					}
				}]
			}
		}`))
	}))
	defer srv.Close()

	fix, err := testClient(srv.URL).DistrictForAddress(context.Background(), "some address, MT")
	require.NoError(t, err)

	assert.Equal(t, []string{benchmarkCurrent, benchmarkFallback}, benchmarks)
	assert.Equal(t, "MT", fix.StateAbbr)
	assert.Equal(t, 1, fix.District)
}

func TestDistrictForAddress_NoMatchOnEitherBenchmark(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"result": {"addressMatches": []}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).DistrictForAddress(context.Background(), "nowhere at all")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 2, calls, "should try exactly two benchmarks")
}

func TestDistrictForCoordinates_TransportErrorNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).DistrictForCoordinates(context.Background(), 41.88, -87.62)
	require.Error(t, err)

	var upstreamErr *domain.UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, http.StatusBadGateway, upstreamErr.Status)
	assert.Equal(t, 1, calls, "transport errors are not retried on the fallback benchmark")
}

func TestDistrictForCoordinates_MissingStateLayer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result": {"geographies": {"Counties": [{"BASENAME": "Cook"}]}}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).DistrictForCoordinates(context.Background(), 41.88, -87.62)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDistrictForCoordinates_MalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "not json")
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).DistrictForCoordinates(context.Background(), 41.88, -87.62)
	var upstreamErr *domain.UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
}
