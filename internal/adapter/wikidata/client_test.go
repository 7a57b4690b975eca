package wikidata

import (
	"context"
	"errors"
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

func TestMayorFor_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("query")
		assert.Contains(t, query, `"Chicago"@en`)
		assert.Contains(t, query, `"Illinois"@en`)
		assert.Equal(t, "json", r.URL.Query().Get("format"))

		_, _ = w.Write([]byte(`{
			"results": {"bindings": [{
				"mayorLabel": {"type": "literal", "value": "Brandon Johnson"},
				"website": {"type": "uri", "value": "https://www.chicago.gov/city/en/depts/mayor.html"}
			}]}
		}`))
	}))
	defer srv.Close()

	mayor, err := testClient(srv.URL).MayorFor(context.Background(), "Chicago", "Illinois", "IL")
	require.NoError(t, err)
	require.NotNil(t, mayor)

	assert.Equal(t, "Brandon Johnson", mayor.Name)
	assert.Equal(t, domain.OfficeMayor, mayor.Office)
	assert.Equal(t, "IL", mayor.State)
	assert.Equal(t, []string{"https://www.chicago.gov/city/en/depts/mayor.html"}, mayor.URLs)
}

func TestMayorFor_NoWebsiteGetsSearchFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"results": {"bindings": [{
				"mayorLabel": {"type": "literal", "value": "Jane Smith"}
			}]}
		}`))
	}))
	defer srv.Close()

	mayor, err := testClient(srv.URL).MayorFor(context.Background(), "Springfield", "Illinois", "IL")
	require.NoError(t, err)
	require.NotNil(t, mayor)

	require.Len(t, mayor.URLs, 1)
	assert.Contains(t, mayor.URLs[0], "duckduckgo.com")
}

func TestMayorFor_NoBindingReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results": {"bindings": []}}`))
	}))
	defer srv.Close()

	mayor, err := testClient(srv.URL).MayorFor(context.Background(), "Nowhere", "Illinois", "IL")
	require.NoError(t, err)
	assert.Nil(t, mayor)
}

func TestMayorFor_BareEntityIDDiscarded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"results": {"bindings": [{
				"mayorLabel": {"type": "literal", "value": "Q110413373"}
			}]}
		}`))
	}))
	defer srv.Close()

	mayor, err := testClient(srv.URL).MayorFor(context.Background(), "Smalltown", "Illinois", "IL")
	require.NoError(t, err)
	assert.Nil(t, mayor)
}

func TestMayorFor_EmptyPlaceShortCircuits(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer srv.Close()

	mayor, err := testClient(srv.URL).MayorFor(context.Background(), "", "Illinois", "IL")
	require.NoError(t, err)
	assert.Nil(t, mayor)
	assert.False(t, called)
}

func TestMayorFor_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).MayorFor(context.Background(), "Chicago", "Illinois", "IL")
	require.Error(t, err)

	var upstreamErr *domain.UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, http.StatusTooManyRequests, upstreamErr.Status)
}
