package congress

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eaglereach/civic-data-service/internal/domain"
	"github.com/eaglereach/civic-data-service/internal/observability"
)

const rosterBody = `[
	{
		"name": {"first": "Richard", "last": "Durbin", "official_full": "Richard J. Durbin"},
		"id": {"bioguide": "D000563", "govtrack": 300038},
		"terms": [
			{"type": "sen", "state": "IL", "party": "Democrat", "end": "2014-01-03"},
			{"type": "sen", "state": "IL", "party": "Democrat",
			 "phone": "202-224-2152", "url": "https://www.durbin.senate.gov", "end": "2027-01-03"}
		]
	},
	{
		"name": {"first": "Tammy", "last": "Duckworth"},
		"id": {"bioguide": "D000622"},
		"terms": [
			{"type": "sen", "state": "IL", "party": "Democrat", "end": "2029-01-03"}
		]
	},
	{
		"name": {"first": "Retired", "last": "Senator"},
		"id": {},
		"terms": [
			{"type": "sen", "state": "IL", "party": "Democrat", "end": "2019-01-03"}
		]
	},
	{
		"name": {"first": "Danny", "last": "Davis"},
		"id": {"bioguide": "D000096"},
		"terms": [
			{"type": "rep", "state": "IL", "district": 7, "party": "Democrat",
			 "phone": "202-225-5006", "end": "2027-01-03"}
		]
	},
	{
		"name": {"first": "Odd", "last": "Dates"},
		"id": {},
		"terms": [
			{"type": "rep", "state": "IL", "district": 9, "party": "Democrat", "end": "not-a-date"}
		]
	},
	{
		"name": {"first": "Other", "last": "State"},
		"id": {},
		"terms": [
			{"type": "rep", "state": "WI", "district": 7, "party": "Republican", "end": "2027-01-03"}
		]
	}
]`

func testDirectory(t *testing.T) (*Directory, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(rosterBody))
	}))
	t.Cleanup(srv.Close)

	clock := clockwork.NewFakeClockAt(time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC))
	d := NewDirectory(srv.URL, 5*time.Second, time.Hour, clock,
		observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	return d, &calls
}

func TestSenatorsFor_ReturnsCurrentSenators(t *testing.T) {
	d, _ := testDirectory(t)

	senators, err := d.SenatorsFor(context.Background(), "IL")
	require.NoError(t, err)
	require.Len(t, senators, 2, "expired senator must be filtered, cap is two")

	assert.Equal(t, "Richard J. Durbin", senators[0].Name)
	assert.Equal(t, domain.OfficeSenator, senators[0].Office)
	assert.Equal(t, "Democrat", senators[0].Party)
	assert.Equal(t, []string{"202-224-2152"}, senators[0].Phones)
	assert.Equal(t, []string{"https://www.durbin.senate.gov"}, senators[0].URLs)
	assert.Equal(t, "D000563", senators[0].SourceIDs["bioguide"])
	assert.Equal(t, "300038", senators[0].SourceIDs["govtrack"])

	assert.Equal(t, "Tammy Duckworth", senators[1].Name)
	assert.NotEmpty(t, senators[1].URLs, "search fallback URL expected when roster has none")
	assert.Contains(t, senators[1].URLs[0], "duckduckgo.com")
}

func TestSenatorsFor_UnknownState(t *testing.T) {
	d, _ := testDirectory(t)

	senators, err := d.SenatorsFor(context.Background(), "ZZ")
	require.NoError(t, err)
	assert.Empty(t, senators)
}

func TestRepresentativeFor_MatchesDistrict(t *testing.T) {
	d, _ := testDirectory(t)

	rep, err := d.RepresentativeFor(context.Background(), "IL", 7)
	require.NoError(t, err)
	require.NotNil(t, rep)

	assert.Equal(t, "Danny Davis", rep.Name)
	assert.Equal(t, domain.OfficeRepresentative, rep.Office)
	assert.Equal(t, "7", rep.District)
}

func TestRepresentativeFor_NoMatchReturnsNil(t *testing.T) {
	d, _ := testDirectory(t)

	rep, err := d.RepresentativeFor(context.Background(), "IL", 13)
	require.NoError(t, err)
	assert.Nil(t, rep)
}

func TestRepresentativeFor_UnparsableEndDateCountsAsServing(t *testing.T) {
	d, _ := testDirectory(t)

	rep, err := d.RepresentativeFor(context.Background(), "IL", 9)
	require.NoError(t, err)
	require.NotNil(t, rep)
	assert.Equal(t, "Odd Dates", rep.Name)
}

func TestLoad_RosterFetchedOnceWithinTTL(t *testing.T) {
	d, calls := testDirectory(t)

	_, err := d.SenatorsFor(context.Background(), "IL")
	require.NoError(t, err)
	_, err = d.RepresentativeFor(context.Background(), "IL", 7)
	require.NoError(t, err)

	assert.Equal(t, 1, *calls, "roster should be served from cache on the second query")
}

func TestLoad_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	d := NewDirectory(srv.URL, 5*time.Second, time.Hour, clockwork.NewFakeClock(),
		observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := d.SenatorsFor(context.Background(), "IL")
	require.Error(t, err)

	var upstreamErr *domain.UpstreamError
	assert.ErrorAs(t, err, &upstreamErr)
}
