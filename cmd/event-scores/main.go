package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/rewired-gh/quantumscout/internal/config"
	"github.com/rewired-gh/quantumscout/internal/encoder"
	"github.com/rewired-gh/quantumscout/internal/logger"
	"github.com/rewired-gh/quantumscout/internal/models"
	"github.com/rewired-gh/quantumscout/internal/tba"
)

var (
	configPath = flag.String("config", "configs/config.yaml", "Path to configuration file (empty for defaults and environment only)")
	teamFlag   = flag.Int("team", 0, "Team number to inspect (defaults to the configured alliance)")
	eventFlag  = flag.String("event", "", "Event key (defaults to prediction.event)")
)

// event-scores prints the qualification scores the predictor would feed into the circuit.
func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)

	if cfg.TBA.AuthKey == "" {
		logger.Fatal("tba.auth_key is required (set QUANTUM_SCOUT_TBA_AUTH_KEY)")
	}

	event := cfg.Prediction.Event
	if *eventFlag != "" {
		event = *eventFlag
	}
	if event == "" {
		logger.Fatal("No event given: pass -event or set prediction.event")
	}

	teams := cfg.Prediction.Teams
	if *teamFlag > 0 {
		teams = []int{*teamFlag}
	}
	if len(teams) == 0 {
		logger.Fatal("No team given: pass -team or set prediction.teams")
	}

	client := tba.NewClient(cfg.TBA.APIBaseURL, cfg.TBA.AuthKey, cfg.TBA.Timeout, tba.ClientConfig{
		MaxRetries:     cfg.TBA.MaxRetries,
		RetryDelayBase: cfg.TBA.RetryDelayBase,
	})

	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("QUALIFICATION SCORES - %s\n", event)
	fmt.Println(strings.Repeat("=", 60))

	ctx := context.Background()
	for _, team := range teams {
		matches, err := client.FetchTeamEventMatches(ctx, team, event)
		if err != nil {
			logger.Fatal("Failed to fetch team %d: %v", team, err)
		}
		printTeam(os.Stdout, team, matches, cfg.Prediction.MatchCount)
	}
}

func printTeam(w io.Writer, team int, matches []models.Match, matchCount int) {
	teamKey := models.TeamKey(team)
	fmt.Fprintf(w, "\n  Team %d\n", team)

	used := 0
	sums := make([]int, encoder.ScoreBits)
	for _, m := range matches {
		if !m.IsQualification() {
			continue
		}
		score := m.ScoreFor(teamKey)
		if !m.IsPlayed() {
			fmt.Fprintf(w, "     %-18s %4d  (not played)\n", m.Key, score)
			continue
		}
		bits, err := encoder.EncodeScore(score)
		if err != nil {
			fmt.Fprintf(w, "     %-18s %4d  (invalid score)\n", m.Key, score)
			continue
		}
		mark := " "
		if used < matchCount {
			mark = "*"
			for i := range bits {
				if bits[i] == '1' {
					sums[i]++
				}
			}
		}
		used++

		overflow := ""
		if score > 1<<encoder.ScoreBits-1 {
			overflow = "  (overflow)"
		}
		fmt.Fprintf(w, "   %s %-18s %4d  %s%s\n", mark, m.Key, score, bits, overflow)
	}

	fmt.Fprintf(w, "    %d played qualification matches, first %d used (*)\n", used, min(used, matchCount))
	fmt.Fprintf(w, "    bit sums (MSB first): %v\n", sums)
}
