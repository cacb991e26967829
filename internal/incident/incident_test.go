package incident

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority(t *testing.T) {
	tests := []struct {
		input string
		want  Priority
	}{
		{"1 - Critical", PriorityCritical},
		{"1 - critical", PriorityCritical},
		{"1", PriorityCritical},
		{"Critical", PriorityCritical},
		{"2 - High", PriorityHigh},
		{"3 - Moderate", PriorityModerate},
		{"4 - Low", PriorityLow},
		{" 4 - low ", PriorityLow},
		{"", PriorityUnknown},
		{"P1", PriorityUnknown},
		{"5 - Planning", PriorityUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, ParsePriority(tc.input))
		})
	}
}

func TestImpactMultiplier(t *testing.T) {
	assert.Equal(t, 2.0, PriorityCritical.ImpactMultiplier())
	assert.Equal(t, 1.5, PriorityHigh.ImpactMultiplier())
	assert.Equal(t, 1.0, PriorityModerate.ImpactMultiplier())
	assert.Equal(t, 0.5, PriorityLow.ImpactMultiplier())
	assert.Equal(t, 1.0, PriorityUnknown.ImpactMultiplier())
}

func TestParseTimestamp(t *testing.T) {
	ts, ok := ParseTimestamp("2025-01-01 10:30:00")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 1, 1, 10, 30, 0, 0, time.UTC), ts)

	ts, ok = ParseTimestamp("2025-06-15")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), ts)

	_, ok = ParseTimestamp("")
	assert.False(t, ok)
	_, ok = ParseTimestamp("   ")
	assert.False(t, ok)
	_, ok = ParseTimestamp("not a date")
	assert.False(t, ok)
	_, ok = ParseTimestamp("2025-13-45 99:99:99")
	assert.False(t, ok)
}

func TestDefaultStateSetsAreDisjoint(t *testing.T) {
	resolved := map[string]struct{}{}
	for _, s := range DefaultResolvedStates() {
		resolved[s] = struct{}{}
	}
	for _, s := range DefaultActiveStates() {
		_, overlap := resolved[s]
		assert.False(t, overlap, "state %q is in both sets", s)
	}
}
