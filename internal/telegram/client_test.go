package telegram

import (
	"strings"
	"testing"

	"github.com/rewired-gh/quantumscout/internal/models"
)

func TestEscapeMarkdownV2(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"2363 + 1731", "2363 \\+ 1731"},
		{"12.5%", "12\\.5%"},
		{"[0, 100)", "\\[0, 100\\)"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		result := escapeMarkdownV2(tt.in)
		if result != tt.expected {
			t.Errorf("escapeMarkdownV2(%q) = %s, expected %s", tt.in, result, tt.expected)
		}
	}
}

func TestFormatRange(t *testing.T) {
	tests := []struct {
		start, end int
		expected   string
	}{
		{-1, 100, "< 100"},
		{50, -1, ">= 50"},
		{0, 127, "[0, 127)"},
		{-1, -1, "all"},
	}

	for _, tt := range tests {
		if result := formatRange(tt.start, tt.end); result != tt.expected {
			t.Errorf("formatRange(%d, %d) = %s, expected %s", tt.start, tt.end, result, tt.expected)
		}
	}
}

func TestFormatMessage(t *testing.T) {
	p := &models.Prediction{
		ID:             "run-1",
		Event:          "2024vafal",
		Alliance:       models.NewAlliance(2363, 1731, 2421),
		MatchCount:     8,
		Shots:          10000,
		MostLikely:     57,
		MostLikelyProb: 3.21,
		Ranges: []models.RangeResult{
			{Start: -1, End: 100, Probability: 88.5},
			{Start: 0, End: 127, Probability: 100, EndMissing: true},
		},
		Points: []models.PointResult{{Value: 57, Probability: 3.21}},
	}

	msg := formatMessage(p)
	for _, want := range []string{
		"2363 \\+ 1731 \\+ 2421 Score Distribution",
		"Most likely score: *57* \\(3\\.21%\\)",
		"< 100: 88\\.50%",
		"\\[0, 127\\): 100\\.00% \\(end not observed\\)",
		"57: 3\\.21%",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected message to contain %q, got:\n%s", want, msg)
		}
	}
}
