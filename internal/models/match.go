// Package models defines the core domain entities for the quantum-scout application.
// These models represent historical FRC matches, the alliance being predicted, and the
// prediction report produced by a run. All models include built-in validation.
//
// Terminology (matching The Blue Alliance's own naming):
//   - Team key: "frc" followed by the team number, e.g. "frc2363".
//   - Comp level: the competition stage of a match; "qm" is a qualification match.
package models

import (
	"errors"
	"fmt"
	"slices"
)

// CompLevelQualification is the comp_level tag of qualification matches
const CompLevelQualification = "qm"

// TeamKey returns the data-source key for a team number
func TeamKey(team int) string {
	return fmt.Sprintf("frc%d", team)
}

// AllianceScore is one side of a match: its final score and the teams that played on it
type AllianceScore struct {
	Score    int      `json:"score"`
	TeamKeys []string `json:"team_keys"`
}

// Alliances holds both sides of a match
type Alliances struct {
	Red  AllianceScore `json:"red"`
	Blue AllianceScore `json:"blue"`
}

// Match represents a single match record from the match-data source
type Match struct {
	Key         string    `json:"key"`
	EventKey    string    `json:"event_key"`
	CompLevel   string    `json:"comp_level"`
	SetNumber   int       `json:"set_number"`
	MatchNumber int       `json:"match_number"`
	Alliances   Alliances `json:"alliances"`
}

// IsQualification reports whether the match is a qualification match
func (m *Match) IsQualification() bool {
	return m.CompLevel == CompLevelQualification
}

// IsPlayed reports whether both alliances have a recorded score.
// Scheduled matches carry a score of -1.
func (m *Match) IsPlayed() bool {
	return m.Alliances.Red.Score >= 0 && m.Alliances.Blue.Score >= 0
}

// ScoreFor returns the score of the alliance teamKey played on.
// Teams not listed on red are credited with the blue score.
func (m *Match) ScoreFor(teamKey string) int {
	if slices.Contains(m.Alliances.Red.TeamKeys, teamKey) {
		return m.Alliances.Red.Score
	}
	return m.Alliances.Blue.Score
}

// Validate checks that all match fields are valid
func (m *Match) Validate() error {
	if m.Key == "" {
		return errors.New("match key must not be empty")
	}
	if m.CompLevel == "" {
		return errors.New("comp level must not be empty")
	}
	if len(m.Alliances.Red.TeamKeys) == 0 && len(m.Alliances.Blue.TeamKeys) == 0 {
		return errors.New("match must list at least one team")
	}
	return nil
}
