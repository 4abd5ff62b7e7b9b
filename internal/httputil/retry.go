// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers for talking to the report host.
package httputil

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"
)

// RetryBaseDelay is the first backoff delay; it doubles on every attempt.
// MaxRetryDelay caps a single wait, including one asked for by a
// Retry-After header. Tests shrink both.
var (
	RetryBaseDelay = 2 * time.Second
	MaxRetryDelay  = time.Minute
)

const defaultMaxRetries = 5

// Retryable reports whether status signals a transient condition: rate
// limiting or an unavailable upstream.
func Retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// DoWithRetry executes req and retries retryable statuses with exponential
// backoff starting at RetryBaseDelay. A Retry-After header given in
// seconds lengthens the wait, never beyond MaxRetryDelay.
//
// When maxRetries is 0 the default (5) is used. The body of a retried
// response is drained and closed before sleeping. A context cancelled
// during a wait returns ctx.Err(). After the last retry the final
// response is returned as-is for the caller to inspect.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if !Retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		wait := backoff(attempt, resp.Header.Get("Retry-After"))
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func backoff(attempt int, retryAfter string) time.Duration {
	wait := RetryBaseDelay << attempt
	if secs, err := strconv.Atoi(retryAfter); err == nil && secs > 0 {
		if ra := time.Duration(secs) * time.Second; ra > wait {
			wait = ra
		}
	}
	if wait > MaxRetryDelay || wait <= 0 {
		wait = MaxRetryDelay
	}
	return wait
}
