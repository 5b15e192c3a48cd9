package recap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldFlag(t *testing.T) {
	tests := []struct {
		name      string
		enabled   bool
		ratio     float64
		threshold float64
		expected  bool
	}{
		{"below threshold", true, 0.5, 0.8, false},
		{"above threshold", true, 0.9, 0.8, true},
		{"exactly at threshold counts as crossed", true, 0.8, 0.8, true},
		{"disabled never flags", false, 0.9, 0.8, false},
		{"disabled at boundary", false, 0.8, 0.8, false},
		{"zero threshold flags everything", true, 0.0, 0.0, true},
		{"threshold one only flags full", true, 0.999, 1.0, false},
		{"threshold one at full", true, 1.0, 1.0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected,
				ShouldFlag(tc.enabled, tc.ratio, tc.threshold))
		})
	}
}

func TestShouldFlag_MatchesRatioComparison(t *testing.T) {
	// shouldFlag(true, r, t) must equal r >= t across the grid.
	for ti := 0; ti <= 10; ti++ {
		for ri := 0; ri <= 10; ri++ {
			threshold := float64(ti) / 10
			ratio := float64(ri) / 10
			assert.Equal(t, ratio >= threshold,
				ShouldFlag(true, ratio, threshold),
				"ratio=%v threshold=%v", ratio, threshold)
			assert.False(t, ShouldFlag(false, ratio, threshold))
		}
	}
}

func TestShouldAttempt(t *testing.T) {
	tests := []struct {
		name     string
		state    ConversationState
		expected bool
	}{
		{
			name:     "not flagged",
			state:    ConversationState{},
			expected: false,
		},
		{
			name:     "flagged and idle",
			state:    ConversationState{NeedsCompaction: true},
			expected: true,
		},
		{
			name: "flagged but already compacting",
			state: ConversationState{
				NeedsCompaction:    true,
				CompactionInFlight: true,
			},
			expected: false,
		},
		{
			name: "in flight without flag",
			state: ConversationState{
				CompactionInFlight: true,
			},
			expected: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ShouldAttempt(tc.state))
		})
	}
}
