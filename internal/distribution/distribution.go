// Package distribution turns raw measurement counts into a query-able score distribution.
//
// Measurement keys arrive least-significant bit first, so every key is reversed before
// it is parsed as a base-2 integer. Counts are scaled to percentages of the shot count
// and stored in ascending outcome order; the range queries depend on that order.
//
// A Distribution is immutable once constructed.
package distribution

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"github.com/rewired-gh/quantumscout/internal/logger"
	"github.com/rewired-gh/quantumscout/internal/models"
)

// Open marks an unbounded side of a range query
const Open = -1

var (
	// ErrInvalidShots is returned when the shot count is not positive
	ErrInvalidShots = errors.New("shots must be positive")
	// ErrInvalidBitstring is returned for keys that are empty or not base-2
	ErrInvalidBitstring = errors.New("invalid bitstring")
	// ErrInvalidCount is returned for negative counts
	ErrInvalidCount = errors.New("count must not be negative")
	// ErrRangeEndpointNotFound is returned by RangeProbabilityChecked when a bounded
	// range's end is not an observed outcome
	ErrRangeEndpointNotFound = errors.New("range endpoint not found")
)

// Entry is one observed outcome and its probability as a percentage (0-100)
type Entry struct {
	Value       int     `json:"value"`
	Probability float64 `json:"probability"`
}

// Distribution is an ascending, duplicate-free mapping from outcome value to probability
type Distribution struct {
	entries  []Entry
	index    map[int]int // value -> position in entries
	shots    int
	alliance models.Alliance
}

// New builds a Distribution from bitstring counts produced by shots measurements.
// Keys that reverse to the same integer have their counts summed.
func New(counts map[string]int, shots int, alliance models.Alliance) (*Distribution, error) {
	if shots <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidShots, shots)
	}

	merged := make(map[int]int, len(counts))
	for key, count := range counts {
		if count < 0 {
			return nil, fmt.Errorf("%w: %q has count %d", ErrInvalidCount, key, count)
		}
		value, err := FromBinary(key)
		if err != nil {
			return nil, err
		}
		merged[value] += count
	}

	values := slices.Sorted(maps.Keys(merged))
	d := &Distribution{
		entries:  make([]Entry, len(values)),
		index:    make(map[int]int, len(values)),
		shots:    shots,
		alliance: alliance,
	}
	for i, v := range values {
		d.entries[i] = Entry{
			Value:       v,
			Probability: float64(merged[v]) / float64(shots) * 100,
		}
		d.index[v] = i
	}

	return d, nil
}

// FromBinary reverses a measurement key and parses it as a base-2 integer
func FromBinary(key string) (int, error) {
	if key == "" {
		return 0, fmt.Errorf("%w: empty key", ErrInvalidBitstring)
	}
	reversed := []byte(key)
	slices.Reverse(reversed)

	v, err := strconv.ParseUint(string(reversed), 2, 62)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBitstring, key)
	}
	return int(v), nil
}

// PointProbability returns the probability of value. Values never observed have
// probability zero; the absence is logged and is not an error.
func (d *Distribution) PointProbability(value int) float64 {
	i, ok := d.index[value]
	if !ok {
		logger.Warn("The value %d is not in the distribution", value)
		return 0
	}
	return d.entries[i].Probability
}

// RangeProbability returns the cumulative probability of a range in one ascending pass.
//
//   - (Open, end): outcomes strictly below end.
//   - (start, Open): outcomes at or above start.
//   - (start, end): outcomes from start, stopping at the first outcome equal to end.
//     If end was never observed the sum runs to the last outcome.
func (d *Distribution) RangeProbability(start, end int) float64 {
	sum, _ := d.rangeSum(start, end)
	return sum
}

// RangeProbabilityChecked behaves like RangeProbability but also reports, with
// ErrRangeEndpointNotFound, a bounded range whose end was never observed.
// The returned sum is the same in both cases.
func (d *Distribution) RangeProbabilityChecked(start, end int) (float64, error) {
	sum, stopped := d.rangeSum(start, end)
	if start != Open && end != Open && !stopped {
		return sum, fmt.Errorf("%w: %d", ErrRangeEndpointNotFound, end)
	}
	return sum, nil
}

// rangeSum reports whether a bounded scan stopped on an exact end match
func (d *Distribution) rangeSum(start, end int) (float64, bool) {
	sum := 0.0
	switch {
	case end == Open:
		for _, e := range d.entries {
			if e.Value < start {
				continue
			}
			sum += e.Probability
		}
		return sum, false
	case start == Open:
		for _, e := range d.entries {
			if e.Value >= end {
				break
			}
			sum += e.Probability
		}
		return sum, false
	default:
		for _, e := range d.entries {
			if e.Value < start {
				continue
			}
			if e.Value == end {
				return sum, true
			}
			sum += e.Probability
		}
		return sum, false
	}
}

// Series returns a copy of the ascending (value, probability) entries
func (d *Distribution) Series() []Entry {
	return slices.Clone(d.entries)
}

// Len returns the number of distinct observed outcomes
func (d *Distribution) Len() int {
	return len(d.entries)
}

// Shots returns the number of measurements the distribution was built from
func (d *Distribution) Shots() int {
	return d.shots
}

// Total returns the summed probability, 100 up to floating-point error
// when the counts add up to the shot count
func (d *Distribution) Total() float64 {
	probs := make([]float64, len(d.entries))
	for i, e := range d.entries {
		probs[i] = e.Probability
	}
	return floats.Sum(probs)
}

// MostLikely returns the highest-probability outcome, preferring the lowest value on ties.
// ok is false for an empty distribution.
func (d *Distribution) MostLikely() (Entry, bool) {
	if len(d.entries) == 0 {
		return Entry{}, false
	}
	best := d.entries[0]
	for _, e := range d.entries[1:] {
		if e.Probability > best.Probability {
			best = e
		}
	}
	return best, true
}

// Alliance returns the display labels attached to the distribution
func (d *Distribution) Alliance() models.Alliance {
	return d.alliance
}

// Title returns the plot caption
func (d *Distribution) Title() string {
	return d.alliance.Title()
}
