package models

import (
	"errors"
	"fmt"
)

// Alliance identifies the three teams whose combined score is predicted.
// The labels are display-only and never affect computation.
type Alliance struct {
	Team1 string `json:"team1"`
	Team2 string `json:"team2"`
	Team3 string `json:"team3"`
}

// NewAlliance builds an Alliance from three team numbers
func NewAlliance(team1, team2, team3 int) Alliance {
	return Alliance{
		Team1: fmt.Sprint(team1),
		Team2: fmt.Sprint(team2),
		Team3: fmt.Sprint(team3),
	}
}

// Title returns the plot caption for the alliance
func (a Alliance) Title() string {
	return fmt.Sprintf("%s + %s + %s Score Distribution", a.Team1, a.Team2, a.Team3)
}

// Validate checks that all three labels are present
func (a Alliance) Validate() error {
	if a.Team1 == "" || a.Team2 == "" || a.Team3 == "" {
		return errors.New("alliance must name three teams")
	}
	return nil
}
