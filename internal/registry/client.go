// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/trial-analyzer/internal/httputil"
	"github.com/pdiddy/trial-analyzer/internal/trialerr"
	"github.com/pdiddy/trial-analyzer/pkg/types"
)

// Fetcher executes a registry query URL.
type Fetcher interface {
	Execute(ctx context.Context, queryURL string) (*Response, error)
}

// Client is the retrying registry fetcher.
type Client struct {
	HTTP      *http.Client
	Policy    httputil.Policy
	UserAgent string
	Logger    logrus.FieldLogger
}

// NewClient returns a Client configured from cfg. The HTTP client timeout
// bounds each individual attempt.
func NewClient(cfg types.RegistryConfig, log logrus.FieldLogger) *Client {
	if log == nil {
		log = discardLogger()
	}
	return &Client{
		HTTP: &http.Client{Timeout: cfg.Timeout},
		Policy: httputil.Policy{
			MaxAttempts: cfg.MaxAttempts,
			BaseDelay:   cfg.BaseDelay,
			Logger:      log,
		},
		UserAgent: cfg.UserAgent,
		Logger:    log,
	}
}

// Execute fetches queryURL, retrying transport errors and non-success
// statuses per the client's policy. A response that arrives but does not
// decode is not retried. All failures are *trialerr.RegistryFetchError.
func (c *Client) Execute(ctx context.Context, queryURL string) (*Response, error) {
	queryURL = strings.TrimSpace(queryURL)
	log := c.logger().WithField("url", queryURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, &trialerr.RegistryFetchError{Endpoint: queryURL, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, c.Policy)
	if err != nil {
		fe := &trialerr.RegistryFetchError{Endpoint: queryURL, Err: err}
		var ae *httputil.AttemptError
		if errors.As(err, &ae) {
			fe.Attempts = ae.Attempts
			fe.StatusCode = ae.StatusCode
			fe.Err = ae.Err
		}
		log.WithError(err).Error("registry request failed")
		return nil, fe
	}
	defer resp.Body.Close()

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.WithError(err).Error("registry response did not decode")
		return nil, &trialerr.RegistryFetchError{
			Endpoint: queryURL,
			Err:      fmt.Errorf("parsing registry response: %w", err),
		}
	}

	log.WithField("studies", len(out.Studies)).Debug("registry query succeeded")
	return &out, nil
}

func (c *Client) logger() logrus.FieldLogger {
	if c.Logger == nil {
		return discardLogger()
	}
	return c.Logger
}
