package models

import (
	"errors"
	"math"
	"time"
)

// RangeResult is the answer to one cumulative probability query.
// Start or End set to -1 leaves that side of the range open.
type RangeResult struct {
	Start       int     `json:"start"`
	End         int     `json:"end"`
	Probability float64 `json:"probability"`
	// EndMissing is set when End was not an observed outcome, in which case
	// the sum ran to the end of the distribution.
	EndMissing bool `json:"end_missing,omitempty"`
}

// PointResult is the answer to one point probability query
type PointResult struct {
	Value       int     `json:"value"`
	Probability float64 `json:"probability"`
}

// Prediction is the report of a single prediction run
type Prediction struct {
	ID               string        `json:"id"`
	Event            string        `json:"event"`
	Alliance         Alliance      `json:"alliance"`
	MatchCount       int           `json:"match_count"`
	Thetas           []float64     `json:"thetas"`
	Shots            int           `json:"shots"`
	DistinctOutcomes int           `json:"distinct_outcomes"`
	MostLikely       int           `json:"most_likely"`
	MostLikelyProb   float64       `json:"most_likely_probability"`
	Ranges           []RangeResult `json:"ranges"`
	Points           []PointResult `json:"points"`
	CreatedAt        time.Time     `json:"created_at"`
}

// Validate checks that all prediction fields are valid
func (p *Prediction) Validate() error {
	if p.ID == "" {
		return errors.New("prediction ID must not be empty")
	}
	if p.Event == "" {
		return errors.New("event must not be empty")
	}
	if err := p.Alliance.Validate(); err != nil {
		return err
	}
	if p.Shots <= 0 {
		return errors.New("shots must be positive")
	}
	for _, theta := range p.Thetas {
		if theta < 0 || theta > math.Pi {
			return errors.New("thetas must be between 0 and pi")
		}
	}
	if p.MostLikelyProb < 0 || p.MostLikelyProb > 100 {
		return errors.New("most likely probability must be between 0 and 100")
	}
	return nil
}
