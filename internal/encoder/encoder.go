// Package encoder converts historical alliance scores into rotation angles.
//
// Each score is a fixed-width binary string, most-significant bit first. For every bit
// position the bits of all matches of all three teams are summed, and the average is
// mapped onto [0, π]. Position 0 is the most-significant bit; the measured outcome keys
// come back in the opposite order and are reversed by the distribution package.
package encoder

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ScoreBits is the width of an encoded score, covering scores 0-127
const ScoreBits = 7

const scoreMask = 1<<ScoreBits - 1

// TeamsPerAlliance is the number of teams whose scores are combined
const TeamsPerAlliance = 3

var (
	// ErrInsufficientMatchData is returned when the match count is not positive
	// or a team has fewer scores than requested
	ErrInsufficientMatchData = errors.New("insufficient match data")
	// ErrMalformedScore is returned for encodings that are not ScoreBits wide binary strings
	ErrMalformedScore = errors.New("malformed score encoding")
	// ErrNegativeScore is returned when encoding a score below zero, which the
	// data source uses for matches that have not been played
	ErrNegativeScore = errors.New("negative score")
)

// EncodeScore returns score as a zero-padded ScoreBits-wide binary string.
// Scores above 127 keep only their low ScoreBits bits; negative scores are rejected.
func EncodeScore(score int) (string, error) {
	if score < 0 {
		return "", fmt.Errorf("%w: %d", ErrNegativeScore, score)
	}
	return fmt.Sprintf("%0*b", ScoreBits, score&scoreMask), nil
}

// BitSums adds up each bit position over the first matchCount scores of every team
func BitSums(teams [TeamsPerAlliance][]string, matchCount int) ([]float64, error) {
	if matchCount <= 0 {
		return nil, fmt.Errorf("%w: match count %d", ErrInsufficientMatchData, matchCount)
	}

	sums := make([]float64, ScoreBits)
	for t, scores := range teams {
		if len(scores) < matchCount {
			return nil, fmt.Errorf("%w: team %d has %d matches, %d requested",
				ErrInsufficientMatchData, t+1, len(scores), matchCount)
		}
		for _, score := range scores[:matchCount] {
			if len(score) != ScoreBits {
				return nil, fmt.Errorf("%w: %q", ErrMalformedScore, score)
			}
			for i := 0; i < ScoreBits; i++ {
				switch score[i] {
				case '0':
				case '1':
					sums[i]++
				default:
					return nil, fmt.Errorf("%w: %q", ErrMalformedScore, score)
				}
			}
		}
	}
	return sums, nil
}

// Thetas returns one angle in [0, π] per bit position:
// sum / (TeamsPerAlliance × matchCount) × π.
func Thetas(teams [TeamsPerAlliance][]string, matchCount int) ([]float64, error) {
	sums, err := BitSums(teams, matchCount)
	if err != nil {
		return nil, err
	}
	floats.Scale(math.Pi/float64(TeamsPerAlliance*matchCount), sums)
	return sums, nil
}
