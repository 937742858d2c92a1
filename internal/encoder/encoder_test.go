package encoder

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeScore(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, "0000000"},
		{1, "0000001"},
		{64, "1000000"},
		{127, "1111111"},
		{100, "1100100"},
		{130, "0000010"}, // overflow keeps the low bits
	}
	for _, tt := range tests {
		got, err := EncodeScore(tt.score)
		require.NoError(t, err, "score %d", tt.score)
		assert.Equal(t, tt.want, got, "score %d", tt.score)
	}
}

func TestEncodeScoreRejectsNegative(t *testing.T) {
	// -1 marks an unplayed match and must not wrap to 1111111
	for _, score := range []int{-1, -128} {
		got, err := EncodeScore(score)
		assert.ErrorIs(t, err, ErrNegativeScore, "score %d", score)
		assert.Empty(t, got)
	}
}

func TestThetasAllOnes(t *testing.T) {
	teams := [TeamsPerAlliance][]string{{"1111111"}, {"1111111"}, {"1111111"}}

	thetas, err := Thetas(teams, 1)
	require.NoError(t, err)
	require.Len(t, thetas, ScoreBits)
	for i, theta := range thetas {
		assert.InDelta(t, math.Pi, theta, 1e-12, "bit %d", i)
	}
}

func TestThetasBitOrder(t *testing.T) {
	// Only the most-significant bit is set, for one team across two matches
	teams := [TeamsPerAlliance][]string{
		{"1000000", "1000000"},
		{"0000000", "0000000"},
		{"0000000", "0000000"},
	}

	thetas, err := Thetas(teams, 2)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/3, thetas[0], 1e-12)
	for _, theta := range thetas[1:] {
		assert.Equal(t, 0.0, theta)
	}
}

func TestThetasUsesFirstMatches(t *testing.T) {
	teams := [TeamsPerAlliance][]string{
		{"0000001", "1111111"},
		{"0000001"},
		{"0000001"},
	}

	thetas, err := Thetas(teams, 1)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi, thetas[ScoreBits-1], 1e-12)
	assert.Equal(t, 0.0, thetas[0])
}

func TestThetasInsufficientMatchData(t *testing.T) {
	teams := [TeamsPerAlliance][]string{{"0000001"}, {"0000001"}, {}}

	_, err := Thetas(teams, 0)
	assert.ErrorIs(t, err, ErrInsufficientMatchData)

	_, err = Thetas(teams, 1)
	assert.ErrorIs(t, err, ErrInsufficientMatchData)
}

func TestThetasMalformedScore(t *testing.T) {
	teams := [TeamsPerAlliance][]string{{"00000012"}, {"0000001"}, {"0000001"}}
	_, err := Thetas(teams, 1)
	assert.ErrorIs(t, err, ErrMalformedScore)

	teams[0] = []string{"000000x"}
	_, err = Thetas(teams, 1)
	assert.ErrorIs(t, err, ErrMalformedScore)
}
