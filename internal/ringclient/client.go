// Package ringclient reads a learner's progress ring from the HTTP API.
//
// Progress widgets never surface ring errors: GetRing substitutes the zero
// ring {0, 0} for any non-2xx response, transport failure or undecodable
// body. Callers that need the failure use FetchRing.
package ringclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/phrazzld/scry-rings/internal/domain"
	"github.com/phrazzld/scry-rings/internal/platform/logger"
	"github.com/phrazzld/scry-rings/internal/redact"
)

// DefaultTimeout applies when NewClient is given a nil *http.Client.
const DefaultTimeout = 5 * time.Second

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 10

// Client calls GET {baseURL}/api/progress/ring/{stackId}.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string, client *http.Client, l *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	if l == nil {
		l = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  l.With(slog.String("component", "ring_client")),
	}
}

// GetRing returns the ring for stackID, or the zero ring if it could not be
// read for any reason.
func (c *Client) GetRing(ctx context.Context, stackID, token string) domain.Ring {
	ring, err := c.FetchRing(ctx, stackID, token)
	if err != nil {
		logger.FromContextOrDefault(ctx, c.logger).Debug("ring unavailable, using zero ring",
			slog.String("stack_id", stackID),
			slog.String("error", redact.Error(err)))
		return domain.Ring{}
	}
	return ring
}

// FetchRing reads the ring for stackID and reports every failure.
func (c *Client) FetchRing(ctx context.Context, stackID, token string) (domain.Ring, error) {
	endpoint := c.baseURL + "/api/progress/ring/" + url.PathEscape(stackID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Ring{}, fmt.Errorf("build ring request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.Ring{}, fmt.Errorf("ring request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.Ring{}, fmt.Errorf("ring request returned %s", resp.Status)
	}

	var ring domain.Ring
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&ring); err != nil {
		return domain.Ring{}, fmt.Errorf("decode ring response: %w", err)
	}
	if ring.Correct < 0 || ring.Total < 0 || ring.Correct > ring.Total {
		return domain.Ring{}, fmt.Errorf("ring response out of range: correct=%d total=%d", ring.Correct, ring.Total)
	}
	return ring, nil
}
