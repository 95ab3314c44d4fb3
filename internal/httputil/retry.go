// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across the pipeline.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = time.Second
)

// Policy controls DoWithRetry. The zero value uses 3 attempts and a 1 s
// base delay.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// BaseDelay scales the linear backoff: before attempt n (n > 1) the
	// caller waits BaseDelay*(n-1).
	BaseDelay time.Duration

	// Sleep waits for d or until ctx is done. Tests substitute a recorder.
	Sleep func(ctx context.Context, d time.Duration) error

	Logger logrus.FieldLogger
}

// Backoff returns the delay before the given 1-indexed attempt.
func (p Policy) Backoff(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	return p.baseDelay() * time.Duration(attempt-1)
}

func (p Policy) maxAttempts() int {
	if p.MaxAttempts <= 0 {
		return defaultMaxAttempts
	}
	return p.MaxAttempts
}

func (p Policy) baseDelay() time.Duration {
	if p.BaseDelay <= 0 {
		return defaultBaseDelay
	}
	return p.BaseDelay
}

// AttemptError is returned when every attempt failed. StatusCode is the
// status of the last response, or 0 when the last failure was a transport
// error.
type AttemptError struct {
	Attempts   int
	StatusCode int
	Err        error
}

func (e *AttemptError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d attempt(s) failed: %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("%d attempt(s) failed: HTTP %d", e.Attempts, e.StatusCode)
}

func (e *AttemptError) Unwrap() error { return e.Err }

// DoWithRetry executes req until it returns a 2xx response or the policy's
// attempts run out. Transport errors and non-2xx statuses both count as
// failed attempts. Every call starts its own attempt counter.
//
// On failure the response body is drained and closed before the backoff
// wait. If ctx is cancelled during a wait the function returns ctx.Err().
// The returned response body must be closed by the caller.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, p Policy) (*http.Response, error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}
	log := p.Logger
	if log == nil {
		log = discardLogger()
	}

	maxAttempts := p.maxAttempts()
	var lastErr error
	lastStatus := 0

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			delay := p.Backoff(attempt)
			log.WithFields(logrus.Fields{"attempt": attempt, "delay": delay}).Info("retrying registry request")
			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr, lastStatus = err, 0
			log.WithFields(logrus.Fields{"attempt": attempt, "url": req.URL.String()}).WithError(err).Warn("request failed")
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		lastErr, lastStatus = nil, resp.StatusCode
		log.WithFields(logrus.Fields{"attempt": attempt, "status": resp.StatusCode, "url": req.URL.String()}).Warn("request returned non-success status")
	}

	return nil, &AttemptError{Attempts: maxAttempts, StatusCode: lastStatus, Err: lastErr}
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
