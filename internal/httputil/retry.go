// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the retrying HTTP client used to fetch
// reference datasets from a mirror.
package httputil

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseDelay is the first backoff interval. Tests shrink it.
var DefaultBaseDelay = 2 * time.Second

const defaultMaxRetries = 5

// RetryPolicy retries requests the server asked us to repeat: HTTP 429 and
// the transient gateway statuses 502, 503 and 504.
type RetryPolicy struct {
	// MaxRetries bounds the retries after the first attempt. Zero means 5.
	MaxRetries int

	// BaseDelay starts the exponential backoff. Zero means DefaultBaseDelay.
	// A Retry-After header given in seconds takes precedence.
	BaseDelay time.Duration

	Logger zerolog.Logger
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Do executes req, retrying retryable statuses with exponential backoff.
// Once retries are exhausted the last response is returned as-is so the
// caller can report its status. Cancelling ctx during a wait returns
// ctx.Err().
func (p RetryPolicy) Do(ctx context.Context, client *http.Client, req *http.Request) (*http.Response, error) {
	maxRetries := p.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	base := p.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if !retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		wait := base << attempt
		if d, ok := retryAfter(resp.Header.Get("Retry-After")); ok {
			wait = d
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		p.Logger.Debug().
			Str("url", req.URL.String()).
			Int("status", resp.StatusCode).
			Dur("backoff", wait).
			Int("attempt", attempt+1).
			Int("max_retries", maxRetries).
			Msg("retrying request")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func retryAfter(v string) (time.Duration, bool) {
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}
