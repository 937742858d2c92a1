// Package scout runs one alliance score prediction end to end.
//
// The three teams' qualification scores are fetched, encoded into rotation angles,
// turned into a circuit, sampled, and the counts are converted into a Distribution.
// Fetch and encoding errors abort before any simulation runs.
package scout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rewired-gh/quantumscout/internal/circuit"
	"github.com/rewired-gh/quantumscout/internal/distribution"
	"github.com/rewired-gh/quantumscout/internal/encoder"
	"github.com/rewired-gh/quantumscout/internal/logger"
	"github.com/rewired-gh/quantumscout/internal/models"
	"github.com/rewired-gh/quantumscout/internal/simulator"
)

// ScoreFetcher returns a team's encoded qualification scores at an event
type ScoreFetcher interface {
	TeamScores(ctx context.Context, team int, event string, numMatches int) ([]string, error)
}

// Runner executes a circuit and returns its measurement counts
type Runner interface {
	Run(ctx context.Context, c *circuit.Circuit, shots int) (simulator.Counts, error)
}

// Request describes one prediction
type Request struct {
	Event      string
	Teams      [encoder.TeamsPerAlliance]int
	MatchCount int
	Shots      int
	Rotation   circuit.Rotation
	// Concurrent fetches the three teams in parallel instead of one after another
	Concurrent bool
}

// Result holds every intermediate product of a prediction
type Result struct {
	Scores       [encoder.TeamsPerAlliance][]string
	Thetas       []float64
	Circuit      *circuit.Circuit
	Counts       simulator.Counts
	Distribution *distribution.Distribution
}

// Scout wires a score source to a circuit runner
type Scout struct {
	fetcher ScoreFetcher
	runner  Runner
}

// New creates a new Scout instance
func New(fetcher ScoreFetcher, runner Runner) *Scout {
	return &Scout{fetcher: fetcher, runner: runner}
}

// Predict runs the full pipeline for req
func (s *Scout) Predict(ctx context.Context, req Request) (*Result, error) {
	rotation := req.Rotation
	if rotation == "" {
		rotation = circuit.RX
	}

	scores, err := s.fetchScores(ctx, req)
	if err != nil {
		return nil, err
	}

	thetas, err := encoder.Thetas(scores, req.MatchCount)
	if err != nil {
		return nil, fmt.Errorf("failed to encode scores: %w", err)
	}
	logger.Debug("Thetas: %v", thetas)

	c, err := circuit.Build(thetas, rotation)
	if err != nil {
		return nil, fmt.Errorf("failed to build circuit: %w", err)
	}

	start := time.Now()
	counts, err := s.runner.Run(ctx, c, req.Shots)
	if err != nil {
		return nil, fmt.Errorf("failed to run circuit: %w", err)
	}
	logger.Debug("Sampled %d shots into %d outcomes in %v", req.Shots, len(counts), time.Since(start))

	alliance := models.NewAlliance(req.Teams[0], req.Teams[1], req.Teams[2])
	dist, err := distribution.New(counts, req.Shots, alliance)
	if err != nil {
		return nil, fmt.Errorf("failed to build distribution: %w", err)
	}

	return &Result{
		Scores:       scores,
		Thetas:       thetas,
		Circuit:      c,
		Counts:       counts,
		Distribution: dist,
	}, nil
}

func (s *Scout) fetchScores(ctx context.Context, req Request) ([encoder.TeamsPerAlliance][]string, error) {
	var scores [encoder.TeamsPerAlliance][]string

	fetch := func(ctx context.Context, i int) error {
		team := req.Teams[i]
		teamScores, err := s.fetcher.TeamScores(ctx, team, req.Event, req.MatchCount)
		if err != nil {
			return fmt.Errorf("team %d: %w", team, err)
		}
		logger.Info("Fetched %d qualification scores for team %d", len(teamScores), team)
		scores[i] = teamScores
		return nil
	}

	if !req.Concurrent {
		for i := range req.Teams {
			if err := fetch(ctx, i); err != nil {
				return scores, err
			}
		}
		return scores, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range req.Teams {
		g.Go(func() error { return fetch(gctx, i) })
	}
	if err := g.Wait(); err != nil {
		return scores, err
	}
	return scores, nil
}

// Report summarizes a result, answering the given range and point queries
func Report(req Request, res *Result, ranges [][2]int, points []int) *models.Prediction {
	dist := res.Distribution
	p := &models.Prediction{
		ID:               uuid.New().String(),
		Event:            req.Event,
		Alliance:         dist.Alliance(),
		MatchCount:       req.MatchCount,
		Thetas:           res.Thetas,
		Shots:            dist.Shots(),
		DistinctOutcomes: dist.Len(),
		CreatedAt:        time.Now(),
	}

	if best, ok := dist.MostLikely(); ok {
		p.MostLikely = best.Value
		p.MostLikelyProb = best.Probability
	}

	for _, r := range ranges {
		sum, err := dist.RangeProbabilityChecked(r[0], r[1])
		result := models.RangeResult{Start: r[0], End: r[1], Probability: sum}
		if errors.Is(err, distribution.ErrRangeEndpointNotFound) {
			logger.Warn("Range [%d, %d): end was not observed, sum covers every outcome from %d", r[0], r[1], r[0])
			result.EndMissing = true
		}
		p.Ranges = append(p.Ranges, result)
	}

	for _, v := range points {
		p.Points = append(p.Points, models.PointResult{Value: v, Probability: dist.PointProbability(v)})
	}

	return p
}
