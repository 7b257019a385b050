package asc

import (
	"bytes"
	"io"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// RetryConfig - transport-level retry behavior for transient API failures.
// This is separate from the artifact-fetch retry loop, which handles the
// eventual-consistency window after profile creation.
type RetryConfig struct {
	MaxRetries    int
	MaxBackoff    time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig - defaults for transport retries.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		MaxBackoff:    30 * time.Second,
		BackoffFactor: 2.0,
	}
}

// retryTransport wraps an http.Client and replays requests that failed in a
// transient way: network errors, timeouts, 429 and retryable 5xx responses.
type retryTransport struct {
	client *http.Client
	config RetryConfig
}

func newRetryTransport(timeout time.Duration, config RetryConfig) *retryTransport {
	return &retryTransport{
		client: &http.Client{Timeout: timeout},
		config: config,
	}
}

func (t *retryTransport) Do(req *http.Request) (*http.Response, error) {
	var lastErr error
	var resp *http.Response

	// Buffer the body so it can be replayed on retry.
	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, errors.Wrap(err, "reading request body")
		}
		req.Body.Close()
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(bodyBytes)), nil
		}
		req.ContentLength = int64(len(bodyBytes))
	}

	for attempt := 0; attempt <= t.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(t.backoff(attempt)):
			}
		}

		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, errors.Wrap(err, "recreating request body")
			}
			req.Body = body
		}

		resp, lastErr = t.client.Do(req)
		if lastErr == nil && !retryableStatus(resp.StatusCode) {
			return resp, nil
		}
		if lastErr != nil && !retryableNetError(lastErr) {
			return nil, lastErr
		}

		if resp != nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
	}

	if lastErr != nil {
		return nil, errors.Wrapf(lastErr, "request failed after %d retries", t.config.MaxRetries)
	}
	return nil, errors.Errorf("request failed with status %d after %d retries",
		resp.StatusCode, t.config.MaxRetries)
}

func (t *retryTransport) backoff(attempt int) time.Duration {
	backoff := float64(time.Second) * math.Pow(t.config.BackoffFactor, float64(attempt-1))
	if backoff > float64(t.config.MaxBackoff) {
		backoff = float64(t.config.MaxBackoff)
	}
	return time.Duration(backoff)
}

func retryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func retryableNetError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary()
	}
	return false
}
