package connectors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	json "github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/cesargomez89/scoutfeed/internal/constants"
	"github.com/cesargomez89/scoutfeed/internal/httpclient"
	"github.com/cesargomez89/scoutfeed/internal/metrics"
	"github.com/cesargomez89/scoutfeed/internal/models"
)

// RemoteConnector talks to a platform connector gateway over HTTP. Calls are
// rate limited, retried on transient statuses, and pass through a circuit
// breaker so a dead gateway fails fast instead of burning the retry budget
// for every artist in a stage.
type RemoteConnector struct {
	platform string
	baseURL  string
	client   *httpclient.Client
	breaker  *gobreaker.CircuitBreaker[[]byte]
}

func NewRemoteConnector(platform, baseURL string) *RemoteConnector {
	settings := gobreaker.Settings{
		Name: "connector-" + platform,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A missing identity is a definitive answer, not a gateway fault.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
	}
	return &RemoteConnector{
		platform: platform,
		baseURL:  baseURL,
		client:   httpclient.NewClient(nil, constants.DefaultConnectorRate, constants.DefaultConnectorBurst),
		breaker:  gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

func (c *RemoteConnector) FetchSnapshot(ctx context.Context, platformID string) (*models.Snapshot, error) {
	data, err := c.get(ctx, fmt.Sprintf("/artists/%s/snapshot", url.PathEscape(platformID)))
	if err != nil {
		return nil, err
	}
	snapshot := &models.Snapshot{}
	if err := json.Unmarshal(data, snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	snapshot.Platform = c.platform
	return snapshot, nil
}

func (c *RemoteConnector) FetchRelated(ctx context.Context, platformID string) ([]models.CandidateStub, error) {
	data, err := c.get(ctx, fmt.Sprintf("/artists/%s/related", url.PathEscape(platformID)))
	if err != nil {
		return nil, err
	}
	return c.decodeStubs(data)
}

func (c *RemoteConnector) Search(ctx context.Context, query string) ([]models.CandidateStub, error) {
	data, err := c.get(ctx, "/search?q="+url.QueryEscape(query))
	if err != nil {
		return nil, err
	}
	return c.decodeStubs(data)
}

func (c *RemoteConnector) decodeStubs(data []byte) ([]models.CandidateStub, error) {
	var stubs []models.CandidateStub
	if err := json.Unmarshal(data, &stubs); err != nil {
		return nil, fmt.Errorf("failed to decode candidate stubs: %w", err)
	}
	for i := range stubs {
		stubs[i].Platform = c.platform
	}
	return stubs, nil
}

func (c *RemoteConnector) get(ctx context.Context, path string) ([]byte, error) {
	data, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.client.Do(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrNotFound
		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%w: circuit open for %s", ErrUnavailable, c.platform)
	}

	outcome := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	case err != nil:
		outcome = "error"
	}
	metrics.ConnectorRequests.WithLabelValues(c.platform, outcome).Inc()

	if err != nil {
		return nil, err
	}
	return data, nil
}
