// Package tba fetches historical match scores from The Blue Alliance API v3.
//
// Only qualification matches are used. Each score is returned as a fixed-width binary
// string ready for the encoder. Any transport, authentication or decoding failure is
// reported as ErrDataSourceUnavailable; no scores are ever fabricated.
package tba

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/samber/lo"

	"github.com/rewired-gh/quantumscout/internal/encoder"
	"github.com/rewired-gh/quantumscout/internal/logger"
	"github.com/rewired-gh/quantumscout/internal/models"
)

// AuthHeader carries the read API key
const AuthHeader = "X-TBA-Auth-Key"

// ErrDataSourceUnavailable wraps every failure to obtain match data
var ErrDataSourceUnavailable = errors.New("data source unavailable")

// MatchCache stores fetched match lists between runs
type MatchCache interface {
	GetMatches(teamKey, eventKey string) ([]models.Match, bool, error)
	PutMatches(teamKey, eventKey string, matches []models.Match) error
}

// Client provides access to The Blue Alliance API
type Client struct {
	apiBaseURL     string
	authKey        string
	httpClient     *http.Client
	maxRetries     int
	retryDelayBase time.Duration
	cache          MatchCache
}

// ClientConfig holds optional HTTP client tuning. Zero values select defaults.
type ClientConfig struct {
	// MaxRetries is the total number of attempts per request; 1 means no retry
	MaxRetries     int
	RetryDelayBase time.Duration
	Cache          MatchCache
}

// NewClient creates a new Blue Alliance client
func NewClient(apiBaseURL, authKey string, timeout time.Duration, cfg ...ClientConfig) *Client {
	c := &Client{
		apiBaseURL: apiBaseURL,
		authKey:    authKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries:     1,
		retryDelayBase: time.Second,
	}
	if len(cfg) > 0 {
		if cfg[0].MaxRetries > 0 {
			c.maxRetries = cfg[0].MaxRetries
		}
		if cfg[0].RetryDelayBase > 0 {
			c.retryDelayBase = cfg[0].RetryDelayBase
		}
		c.cache = cfg[0].Cache
	}
	return c
}

// FetchTeamEventMatches retrieves every match team played at event, in source order
func (c *Client) FetchTeamEventMatches(ctx context.Context, team int, event string) ([]models.Match, error) {
	teamKey := models.TeamKey(team)

	if c.cache != nil {
		matches, ok, err := c.cache.GetMatches(teamKey, event)
		if err != nil {
			logger.Warn("Match cache read failed for %s at %s: %v", teamKey, event, err)
		} else if ok {
			logger.Debug("Using %d cached matches for %s at %s", len(matches), teamKey, event)
			return matches, nil
		}
	}

	endpoint := fmt.Sprintf("%s/team/%s/event/%s/matches/simple",
		c.apiBaseURL, url.PathEscape(teamKey), url.PathEscape(event))

	body, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch matches for %s: %w", ErrDataSourceUnavailable, teamKey, err)
	}

	var matches []models.Match
	if err := json.Unmarshal(body, &matches); err != nil {
		return nil, fmt.Errorf("%w: failed to decode matches for %s: %w", ErrDataSourceUnavailable, teamKey, err)
	}
	for i := range matches {
		if err := matches[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: malformed match %d for %s: %w", ErrDataSourceUnavailable, i, teamKey, err)
		}
	}

	if c.cache != nil {
		if err := c.cache.PutMatches(teamKey, event, matches); err != nil {
			logger.Warn("Match cache write failed for %s at %s: %v", teamKey, event, err)
		}
	}

	return matches, nil
}

// TeamScores returns the binary encodings of team's alliance score in its first
// numMatches qualification matches at event. Fewer are returned if fewer were played.
func (c *Client) TeamScores(ctx context.Context, team int, event string, numMatches int) ([]string, error) {
	if numMatches < 1 {
		return nil, fmt.Errorf("%w: match count %d", encoder.ErrInsufficientMatchData, numMatches)
	}

	matches, err := c.FetchTeamEventMatches(ctx, team, event)
	if err != nil {
		return nil, err
	}

	scores, err := QualificationScores(matches, models.TeamKey(team))
	if err != nil {
		return nil, fmt.Errorf("%w: team %d: %w", ErrDataSourceUnavailable, team, err)
	}
	logger.Debug("Team %d played %d qualification matches at %s", team, len(scores), event)
	if len(scores) > numMatches {
		scores = scores[:numMatches]
	}
	return scores, nil
}

// QualificationScores encodes teamKey's score in each played qualification match,
// keeping source order. Matches that are scheduled but unplayed are skipped.
func QualificationScores(matches []models.Match, teamKey string) ([]string, error) {
	played := lo.Filter(matches, func(m models.Match, _ int) bool {
		return m.IsQualification() && m.IsPlayed()
	})

	scores := make([]string, 0, len(played))
	for _, m := range played {
		bits, err := encoder.EncodeScore(m.ScoreFor(teamKey))
		if err != nil {
			return nil, fmt.Errorf("match %s: %w", m.Key, err)
		}
		scores = append(scores, bits)
	}
	return scores, nil
}

// doRequest performs an authenticated GET, retrying transport and server errors
func (c *Client) doRequest(ctx context.Context, endpoint string) ([]byte, error) {
	var body []byte

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Accept", "application/json")
			req.Header.Set(AuthHeader, c.authKey)

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode >= 500 {
				return fmt.Errorf("server error: %d", resp.StatusCode)
			}
			if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
				return retry.Unrecoverable(fmt.Errorf("authentication rejected: %d", resp.StatusCode))
			}
			if resp.StatusCode != http.StatusOK {
				return retry.Unrecoverable(fmt.Errorf("unexpected status: %d", resp.StatusCode))
			}

			body, err = io.ReadAll(resp.Body)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries)),
		retry.Delay(c.retryDelayBase),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Debug("Retrying %s (attempt %d): %v", endpoint, n+2, err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}
