package elprisetjustnu

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/angas/elpriskvart-go/days"
)

const DefaultBaseUrl = "https://www.elprisetjustnu.se/api/v1/prices"

// Per-call upper bound, a hung upstream never stalls a refresh longer.
const fetchTimeout = 20 * time.Second

type Status int

const (
	// StatusOK means a 2xx response with a decodable body.
	StatusOK Status = iota
	// StatusNotYetAvailable means the upstream answered 404: prices for
	// the requested day are simply not published yet. Not an error.
	StatusNotYetAvailable
	// StatusFailed covers timeouts, network errors, unexpected status
	// codes and undecodable bodies.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotYetAvailable:
		return "not_yet_available"
	default:
		return "failed"
	}
}

// FetchResult classifies a single fetch attempt. Err carries the
// diagnostic cause for StatusFailed; Raw holds the decoded body for
// StatusOK, expected to be a JSON array of loosely typed objects.
type FetchResult struct {
	Status Status
	Raw    any
	Err    error
}

func (r FetchResult) OK() bool {
	return r.Status == StatusOK
}

// Client fetches day-ahead spot prices for one price area from
// elprisetjustnu.se. Stateless across calls, no retries.
type Client struct {
	logger  *slog.Logger
	baseUrl string
	area    string
	http    *http.Client
}

func New(logger *slog.Logger, baseUrl string, area string) *Client {
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}
	return &Client{
		logger:  logger,
		baseUrl: baseUrl,
		area:    area,
		http:    &http.Client{Timeout: fetchTimeout},
	}
}

// FetchDay requests the published prices for one calendar day. Failures
// are folded into the result, never returned as an error.
func (c *Client) FetchDay(ctx context.Context, day days.Day) FetchResult {
	t := day.Time(time.UTC)
	url := fmt.Sprintf("%s/%d/%02d-%02d_%s.json",
		c.baseUrl, t.Year(), int(t.Month()), t.Day(), c.area)
	c.logger.Debug("requesting prices", slog.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return failed(fmt.Errorf("creating request: %w", err))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return failed(fmt.Errorf("fetching prices for %s: %w", day, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.logger.Info("prices not published yet",
			slog.String("day", day.String()),
			slog.String("area", c.area))
		return FetchResult{Status: StatusNotYetAvailable}
	}

	if resp.StatusCode != http.StatusOK {
		return failed(fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, day))
	}

	var raw any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return failed(fmt.Errorf("decoding response for %s: %w", day, err))
	}

	return FetchResult{Status: StatusOK, Raw: raw}
}

func failed(err error) FetchResult {
	return FetchResult{Status: StatusFailed, Err: err}
}
