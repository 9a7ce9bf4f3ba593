package vocab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimetrends/ucr-mcp-server/internal/errors"
)

func TestNormalizeOffenseCanonical(t *testing.T) {
	// Canonical inputs must normalize to themselves
	for _, name := range Offenses() {
		offense, err := NormalizeOffense(name)
		require.Nil(t, err, "canonical offense %q should normalize", name)
		assert.Equal(t, name, string(offense))
	}
}

func TestNormalizeOffenseAliases(t *testing.T) {
	tests := []struct {
		input    string
		expected Offense
	}{
		{"mvt", MotorVehicleTheft},
		{"car theft", MotorVehicleTheft},
		{"auto-theft", MotorVehicleTheft},
		{"murder", Homicide},
		{"homicides", Homicide},
		{"violent", ViolentCrime},
		{"Violent Crime", ViolentCrime},
		{"property", PropertyCrime},
		{"break-in", Burglary},
		{"  burglary  ", Burglary},
		{"VIOLENT-CRIME", ViolentCrime},
		{"violent_crime", ViolentCrime},
		{"motor_vehicle_theft", MotorVehicleTheft},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			offense, err := NormalizeOffense(tt.input)
			require.Nil(t, err)
			assert.Equal(t, tt.expected, offense)
		})
	}
}

func TestNormalizeOffenseUnknown(t *testing.T) {
	_, err := NormalizeOffense("arson")
	require.NotNil(t, err)
	assert.Equal(t, errors.CodeInvalidOffense, err.Code)
	assert.Equal(t, errors.ValidationError, err.Category)
	assert.NotEmpty(t, err.Suggestion)
	assert.Contains(t, err.Details, "valid_offenses")
}

func TestNormalizeOffenseTypoSuggestion(t *testing.T) {
	_, err := NormalizeOffense("burglry")
	require.NotNil(t, err)
	assert.Equal(t, "burglary", err.Details["nearest_match"])
	assert.Contains(t, err.Suggestion, "burglary")
}

func TestNormalizeOffenseNoSuggestionWhenFar(t *testing.T) {
	_, err := NormalizeOffense("zzzzzzzzzzzzzzzzzzzz")
	require.NotNil(t, err)
	_, hasNearest := err.Details["nearest_match"]
	assert.False(t, hasNearest, "far inputs should not get a nearest match")
}

func TestNormalizeRegionDefaults(t *testing.T) {
	region, err := NormalizeRegion("")
	require.Nil(t, err)
	assert.Equal(t, National, region)
	assert.True(t, region.IsNational())

	region, err = NormalizeRegion("national")
	require.Nil(t, err)
	assert.Equal(t, National, region)
}

func TestNormalizeRegionSupportedStates(t *testing.T) {
	for _, code := range []string{"CA", "tx", "Fl", "NY", "il"} {
		region, err := NormalizeRegion(code)
		require.Nil(t, err, "state %q should be supported", code)
		assert.False(t, region.IsNational())
	}
}

func TestNormalizeRegionUnsupportedState(t *testing.T) {
	// WA is a real state code but outside the supported set
	_, err := NormalizeRegion("WA")
	require.NotNil(t, err)
	assert.Equal(t, errors.CodeUnsupportedRegion, err.Code)
	// The message must enumerate all supported states and point at the
	// national fallback
	for _, code := range States() {
		assert.Contains(t, err.Suggestion, code)
	}
	assert.Contains(t, err.Suggestion, "aggregate")
}

func TestNormalizeRegionMalformed(t *testing.T) {
	for _, input := range []string{"California", "C", "CAL", "C1"} {
		_, err := NormalizeRegion(input)
		require.NotNil(t, err, "input %q should be malformed", input)
		assert.Equal(t, errors.CodeMalformedRegion, err.Code)
	}
}

func TestDisplayNames(t *testing.T) {
	assert.Equal(t, "Motor Vehicle Theft", MotorVehicleTheft.DisplayName())
	assert.Equal(t, "Violent Crime", ViolentCrime.DisplayName())
	assert.Equal(t, "Homicide", Homicide.DisplayName())
	assert.Equal(t, "National", National.DisplayName())
	assert.Equal(t, "California", Region("CA").DisplayName())
	assert.Equal(t, "New York", Region("NY").DisplayName())
}

func TestStateName(t *testing.T) {
	assert.Equal(t, "Texas", StateName("TX"))
	assert.Equal(t, "Texas", StateName("tx"))
	assert.Equal(t, "ZZ", StateName("ZZ"))
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"a", "", 1},
		{"", "abc", 3},
		{"burglary", "burglary", 0},
		{"burglry", "burglary", 1},
		{"homicide", "homicode", 1},
		{"kitten", "sitting", 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, editDistance(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}
