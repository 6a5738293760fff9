package optimization

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"outlet-route-service/internal/ports"
	"strings"
	"time"
)

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

func (o *ORSOptimizer) newRequest(
	ctx context.Context,
	method string,
	url string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", o.apiKey)
	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func (o *ORSOptimizer) do(req *http.Request) (*http.Response, error) {
	resp, err := o.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 429 and 5xx responses)
// using exponential backoff while respecting context cancellation.
// Every attempt first waits on the rate limiter when one is configured.
func (o *ORSOptimizer) doWithRetry(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	backoff := o.initialBackoff

	var lastErr error

	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if o.limiter != nil {
			if err := o.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limiter: %w", err)
			}
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := o.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable(err) || attempt == o.maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}

func retryable(err error) bool {
	var he *httpStatusError
	if errors.As(err, &he) {
		switch he.Code {
		case 429, 500, 502, 503, 504:
			return true
		}
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// classify wraps a transport error in the matching ports error class.
func classify(err error) error {
	var he *httpStatusError
	if errors.As(err, &he) {
		if he.Code == http.StatusTooManyRequests || he.Code >= 500 {
			return fmt.Errorf("%w: %w", ports.ErrOptimizerUnavailable, err)
		}
		return fmt.Errorf("%w: %w", ports.ErrOptimizerRejected, err)
	}
	return fmt.Errorf("%w: %w", ports.ErrOptimizerUnavailable, err)
}
