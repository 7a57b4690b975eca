package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	at := time.Date(2026, 8, 31, 15, 10, 0, 0, time.UTC)
	district := 7
	audit := LookupAudit{
		Input:      "60601",
		StateAbbr:  "IL",
		District:   &district,
		Officials:  3,
		Outcome:    "ok",
		Cached:     true,
		DurationMS: 12,
		At:         at,
	}

	msg, err := serializeToMessage(audit)
	require.NoError(t, err)

	assert.Equal(t, []byte("60601"), msg.Key)
	assert.Contains(t, string(msg.Value), `"state_abbr":"IL"`)
	assert.Contains(t, string(msg.Value), `"district":7`)
	assert.Contains(t, string(msg.Value), `"cached":true`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "outcome", msg.Headers[0].Key)
	assert.Equal(t, []byte("ok"), msg.Headers[0].Value)
	assert.Equal(t, "at", msg.Headers[1].Key)
	assert.Equal(t, []byte(at.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestSerializeToMessage_OmitsEmptyOptionals(t *testing.T) {
	msg, err := serializeToMessage(LookupAudit{Input: "abc", Outcome: "invalid"})
	require.NoError(t, err)

	assert.NotContains(t, string(msg.Value), "state_abbr")
	assert.NotContains(t, string(msg.Value), "district")
}
