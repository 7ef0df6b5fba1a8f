// Package generator talks to an itinerary-generation service over HTTP.
//
// The service receives the user's preferences, the destination and the
// number of days, and answers with the itinerary as a JSON array of lines.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/theakshaypant/dayplan/internal/core"
	appLog "github.com/theakshaypant/dayplan/internal/log"
)

const DefaultTimeout = 90 * time.Second

// Bodies larger than this are not an itinerary.
const maxBody = 1 << 20

type request struct {
	UserInput    string `json:"userInput"`
	City         string `json:"city"`
	NumberOfDays int    `json:"numberOfDays"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Client struct {
	id       string
	name     string
	endpoint string
	http     *http.Client
}

// New returns a client for the given endpoint, e.g.
// "http://localhost:3000/api/itinerary".
func New(id, endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		id:       id,
		name:     "Itinerary generator",
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

func (c *Client) ID() string   { return c.id }
func (c *Client) Name() string { return c.name }

// RequiresPreferences is true: the generator plans around what the user
// asks for.
func (c *Client) RequiresPreferences() bool { return true }

// FetchItinerary asks the service for an itinerary. Every failure, from
// transport errors to a body that is not a list of lines, wraps
// core.ErrNetwork.
func (c *Client) FetchItinerary(ctx context.Context, req core.ItineraryRequest) ([]string, error) {
	days := req.Days
	if days <= 0 {
		days = 1
	}
	payload, err := json.Marshal(request{
		UserInput:    req.Preferences,
		City:         req.City,
		NumberOfDays: days,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", core.ErrNetwork, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", core.ErrNetwork, err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)

	appLog.Info("generator: request", "request_id", requestID, "city", req.City, "days", days)
	start := time.Now()

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", core.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := resp.Status
		var er errorResponse
		if json.Unmarshal(body, &er) == nil && er.Error != "" {
			msg = er.Error
		}
		return nil, fmt.Errorf("%w: generator returned %d: %s", core.ErrNetwork, resp.StatusCode, msg)
	}

	lines, err := decodeLines(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrNetwork, err)
	}

	appLog.Info("generator: response", "request_id", requestID, "lines", len(lines), "took", time.Since(start).Round(time.Millisecond))
	return lines, nil
}

// decodeLines accepts a JSON array of strings, or a single string holding
// the whole itinerary. A null body is an error, not an empty itinerary.
func decodeLines(body []byte) ([]string, error) {
	var lines []string
	if err := json.Unmarshal(body, &lines); err == nil {
		if lines == nil {
			return nil, fmt.Errorf("decode response: null body")
		}
		return lines, nil
	}
	var text string
	if err := json.Unmarshal(body, &text); err == nil {
		return strings.Split(text, "\n"), nil
	}
	return nil, fmt.Errorf("decode response: expected a list of lines")
}
