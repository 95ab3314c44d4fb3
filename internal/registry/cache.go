// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Cache memoizes registry responses keyed by the trimmed query URL. Entries
// never expire; Reset clears them. Empty responses are cached too.
//
// Concurrent misses on the same key may both reach the fetcher; the last
// response stored wins.
type Cache struct {
	fetcher Fetcher
	log     logrus.FieldLogger

	mu      sync.Mutex
	entries map[string]*Response
}

// NewCache wraps fetcher.
func NewCache(fetcher Fetcher, log logrus.FieldLogger) *Cache {
	if log == nil {
		log = discardLogger()
	}
	return &Cache{
		fetcher: fetcher,
		log:     log,
		entries: make(map[string]*Response),
	}
}

// GetOrFetch returns the cached response for queryURL, fetching and storing
// it on a miss. Failed fetches are not cached.
func (c *Cache) GetOrFetch(ctx context.Context, queryURL string) (*Response, error) {
	key := strings.TrimSpace(queryURL)

	c.mu.Lock()
	resp, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		c.log.WithField("url", key).Debug("cache hit")
		return resp, nil
	}

	resp, err := c.fetcher.Execute(ctx, key)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = resp
	c.mu.Unlock()
	return resp, nil
}

// Execute lets a Cache stand in wherever a Fetcher is expected.
func (c *Cache) Execute(ctx context.Context, queryURL string) (*Response, error) {
	return c.GetOrFetch(ctx, queryURL)
}

// Len returns the number of cached responses.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Reset drops every cached response.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.entries = make(map[string]*Response)
	c.mu.Unlock()
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
