// Package opendata provides a minimal client for the StatsBomb open-data repository.
package opendata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/pable/go-sb-features/internal/logger"
	"github.com/pable/go-sb-features/internal/model"
	"github.com/pable/go-sb-features/internal/statsbomb"
)

// DefaultBaseURL is the raw-file root of the public open-data repository.
const DefaultBaseURL = "https://raw.githubusercontent.com/statsbomb/open-data/master/data"

// Client is a minimal open-data client. Requests are rate limited and pass through a
// circuit breaker so a failing upstream is not hammered by batch fetches.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	log     logrus.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a mirror or a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithRateLimit sets the sustained request rate and burst.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(r, burst) }
}

// NewClient returns an open-data client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
		limiter: rate.NewLimiter(rate.Every(250*time.Millisecond), 4),
		log:     logger.WithComponent("opendata"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "statsbomb-open-data",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.WithFields(logrus.Fields{
				"breaker":    name,
				"from_state": from.String(),
				"to_state":   to.String(),
			}).Warn("open-data circuit breaker state changed")
		},
	})
	return c
}

// Competition is one entry of competitions.json.
type Competition struct {
	CompetitionID   int    `json:"competition_id"`
	SeasonID        int    `json:"season_id"`
	CountryName     string `json:"country_name"`
	CompetitionName string `json:"competition_name"`
	SeasonName      string `json:"season_name"`
}

// Match holds the fields we need from matches/<competition>/<season>.json.
type Match struct {
	MatchID   int    `json:"match_id"`
	MatchDate string `json:"match_date"`
	KickOff   string `json:"kick_off"`
	HomeTeam  struct {
		Name string `json:"home_team_name"`
	} `json:"home_team"`
	AwayTeam struct {
		Name string `json:"away_team_name"`
	} `json:"away_team"`
	HomeScore int `json:"home_score"`
	AwayScore int `json:"away_score"`
}

// get fetches path relative to the base URL and returns the body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	body, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, path)
	})
	if err != nil {
		return nil, err
	}
	return body.([]byte), nil
}

func (c *Client) do(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: read body: %w", path, err)
	}
	c.log.WithFields(logrus.Fields{
		"path":    path,
		"status":  resp.StatusCode,
		"bytes":   len(body),
		"elapsed": time.Since(start),
	}).Debug("open-data request")

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	default:
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, fmt.Errorf("%w: GET %s: HTTP %d: %s", ErrUpstream, path, resp.StatusCode, snippet)
	}
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	body, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Competitions lists every competition season in the repository.
func (c *Client) Competitions(ctx context.Context) ([]Competition, error) {
	var out []Competition
	if err := c.getJSON(ctx, "/competitions.json", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Matches lists the matches of one competition season.
func (c *Client) Matches(ctx context.Context, competitionID, seasonID int) ([]Match, error) {
	var out []Match
	path := fmt.Sprintf("/matches/%d/%d.json", competitionID, seasonID)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EventsRaw returns the undecoded events file of a match.
func (c *Client) EventsRaw(ctx context.Context, matchID int) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("/events/%d.json", matchID))
}

// Events fetches and decodes the events of a match.
func (c *Client) Events(ctx context.Context, matchID int) ([]model.Event, error) {
	raw, err := c.EventsRaw(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return statsbomb.Decode(bytes.NewReader(raw), matchID)
}
