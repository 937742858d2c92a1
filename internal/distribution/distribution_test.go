package distribution

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/quantumscout/internal/models"
)

var alliance = models.NewAlliance(2363, 1731, 2421)

// sampleDistribution builds {0:10, 50:20, 100:70} over 100 shots
func sampleDistribution(t *testing.T) *Distribution {
	t.Helper()
	counts := map[string]int{
		"0000000": 10,
		"0100110": 20, // 50 = 0110010, reversed
		"0010011": 70, // 100 = 1100100, reversed
	}
	d, err := New(counts, 100, alliance)
	require.NoError(t, err)
	return d
}

func TestFromBinaryReversesKey(t *testing.T) {
	v, err := FromBinary("0000001")
	require.NoError(t, err)
	assert.Equal(t, 64, v)

	v, err = FromBinary("1000000")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = FromBinary("01x")
	assert.ErrorIs(t, err, ErrInvalidBitstring)

	_, err = FromBinary("")
	assert.ErrorIs(t, err, ErrInvalidBitstring)
}

func TestNewNormalizesAndSorts(t *testing.T) {
	d, err := New(map[string]int{"0000001": 25, "1000000": 50, "0000000": 25}, 100, alliance)
	require.NoError(t, err)

	series := d.Series()
	require.Len(t, series, 3)
	assert.Equal(t, []Entry{
		{Value: 0, Probability: 25},
		{Value: 1, Probability: 50},
		{Value: 64, Probability: 25},
	}, series)
	assert.InDelta(t, 100.0, d.Total(), 1e-9)
}

func TestNewSumsCollidingKeys(t *testing.T) {
	// "1" and "10" both reverse to a value of 1
	d, err := New(map[string]int{"1": 30, "10": 20}, 100, alliance)
	require.NoError(t, err)

	require.Equal(t, 1, d.Len())
	assert.InDelta(t, 50.0, d.PointProbability(1), 1e-9)
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New(map[string]int{"0": 1}, 0, alliance)
	assert.ErrorIs(t, err, ErrInvalidShots)

	_, err = New(map[string]int{"2": 1}, 10, alliance)
	assert.ErrorIs(t, err, ErrInvalidBitstring)

	_, err = New(map[string]int{"0": -1}, 10, alliance)
	assert.ErrorIs(t, err, ErrInvalidCount)
}

func TestTotalIsHundredForFullCounts(t *testing.T) {
	counts := map[string]int{}
	shots := 0
	for i, key := range []string{"0000000", "1010101", "1111111", "0110011", "0001000"} {
		counts[key] = 37*i + 11
		shots += 37*i + 11
	}
	d, err := New(counts, shots, alliance)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, d.Total(), 1e-9)
}

func TestPointProbability(t *testing.T) {
	d := sampleDistribution(t)

	assert.InDelta(t, 20.0, d.PointProbability(50), 1e-9)
	assert.Equal(t, 0.0, d.PointProbability(51))
	assert.Equal(t, 0.0, d.PointProbability(-5))
}

func TestRangeProbability(t *testing.T) {
	d := sampleDistribution(t)

	tests := []struct {
		name       string
		start, end int
		want       float64
	}{
		{"below end", Open, 100, 30},
		{"below absent end", Open, 75, 30},
		{"at or above start", 50, Open, 90},
		{"at or above absent start", 51, Open, 70},
		{"bounded", 0, 100, 30},
		{"bounded excludes end", 50, 100, 20},
		{"absent end runs to last outcome", 0, 127, 100},
		{"end below start never stops", 50, 0, 90},
		{"fully open", Open, Open, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, d.RangeProbability(tt.start, tt.end), 1e-9)
		})
	}
}

func TestRangeProbabilityChecked(t *testing.T) {
	d := sampleDistribution(t)

	sum, err := d.RangeProbabilityChecked(0, 127)
	assert.True(t, errors.Is(err, ErrRangeEndpointNotFound))
	assert.InDelta(t, 100.0, sum, 1e-9)

	sum, err = d.RangeProbabilityChecked(0, 100)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, sum, 1e-9)

	sum, err = d.RangeProbabilityChecked(Open, 127)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, sum, 1e-9)
}

func TestMostLikely(t *testing.T) {
	d := sampleDistribution(t)
	best, ok := d.MostLikely()
	require.True(t, ok)
	assert.Equal(t, 100, best.Value)

	tied, err := New(map[string]int{"01": 5, "1": 5}, 10, alliance)
	require.NoError(t, err)
	best, ok = tied.MostLikely()
	require.True(t, ok)
	assert.Equal(t, 1, best.Value)

	empty, err := New(map[string]int{}, 10, alliance)
	require.NoError(t, err)
	_, ok = empty.MostLikely()
	assert.False(t, ok)
}

func TestSeriesIsACopy(t *testing.T) {
	d := sampleDistribution(t)
	series := d.Series()
	series[0].Probability = 99

	assert.InDelta(t, 10.0, d.PointProbability(0), 1e-9)
	assert.Equal(t, "2363 + 1731 + 2421 Score Distribution", d.Title())
}
