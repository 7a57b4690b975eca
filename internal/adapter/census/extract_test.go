package census

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Layer maps below mirror captured Census payload shapes across vintages.

func TestExtract_NumberedDistrict(t *testing.T) {
	geo := geographies{
		"States":                        {{Stusab: "IL", Basename: "Illinois"}},
		"119th Congressional Districts": {{Basename: "7"}},
		"Counties":                      {{Basename: "Cook"}},
	}

	state, district, ok := extractStateAndDistrict(geo)
	require.True(t, ok)
	assert.Equal(t, "IL", state)
	assert.Equal(t, 7, district)
}

func TestExtract_OlderVintageKeyName(t *testing.T) {
	geo := geographies{
		"States": {{Stusab: "TX"}},
		"116th Congressional Districts": {{Basename: "Congressional District 21"}},
	}

	state, district, ok := extractStateAndDistrict(geo)
	require.True(t, ok)
	assert.Equal(t, "TX", state)
	assert.Equal(t, 21, district)
}

func TestExtract_AtLargeIsDistrictZero(t *testing.T) {
	geo := geographies{
		"States":                        {{Stusab: "WY"}},
		"119th Congressional Districts": {{Basename: "At Large"}},
	}

	state, district, ok := extractStateAndDistrict(geo)
	require.True(t, ok)
	assert.Equal(t, "WY", state)
	assert.Equal(t, 0, district)
}

func TestExtract_NoDistrictLayerDefaultsToZero(t *testing.T) {
	geo := geographies{
		"States":   {{Stusab: "AK"}},
		"Counties": {{Basename: "Anchorage"}},
	}

	state, district, ok := extractStateAndDistrict(geo)
	require.True(t, ok)
	assert.Equal(t, "AK", state)
	assert.Equal(t, 0, district)
}

func TestExtract_EmptyDistrictLayerDefaultsToZero(t *testing.T) {
	geo := geographies{
		"States":                        {{Stusab: "VT"}},
		"119th Congressional Districts": {},
	}

	_, district, ok := extractStateAndDistrict(geo)
	require.True(t, ok)
	assert.Equal(t, 0, district)
}

func TestExtract_BasenameWithoutDigitsDefaultsToZero(t *testing.T) {
	geo := geographies{
		"States":                        {{Stusab: "ND"}},
		"119th Congressional Districts": {{Basename: "Statewide"}},
	}

	_, district, ok := extractStateAndDistrict(geo)
	require.True(t, ok)
	assert.Equal(t, 0, district)
}

func TestExtract_MissingStatesLayerFails(t *testing.T) {
	geo := geographies{
		"119th Congressional Districts": {{Basename: "7"}},
	}

	_, _, ok := extractStateAndDistrict(geo)
	assert.False(t, ok)
}

func TestExtract_EmptyStateAbbreviationFails(t *testing.T) {
	geo := geographies{
		"States": {{Stusab: ""}},
	}

	_, _, ok := extractStateAndDistrict(geo)
	assert.False(t, ok)
}

func TestExtract_CaseInsensitiveLayerMatch(t *testing.T) {
	geo := geographies{
		"States": {{Stusab: "CA"}},
		"118TH CONGRESSIONAL DISTRICTS": {{Basename: "12"}},
	}

	_, district, ok := extractStateAndDistrict(geo)
	require.True(t, ok)
	assert.Equal(t, 12, district)
}
