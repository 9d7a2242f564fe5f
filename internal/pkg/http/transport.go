package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	nethttp "net/http"
	"time"

	"github.com/opencollective/ledger/internal/pkg/circuitbreaker"
	nrpkg "github.com/opencollective/ledger/internal/pkg/newrelic"
	"github.com/opencollective/ledger/internal/pkg/retry"
)

// HTTPError is a response status worth retrying
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: status %d", e.Message, e.StatusCode)
}

// ResilientTransport wraps a RoundTripper with retry and circuit breaker protection.
// Transport errors, 429 and 5xx responses are retried. When retries run out the
// last error response is still returned to the caller.
type ResilientTransport struct {
	base    nethttp.RoundTripper
	breaker *circuitbreaker.CircuitBreaker
	retrier *retry.Retrier
	library string
}

// NewResilientTransport creates a transport reporting its calls as external segments of library
func NewResilientTransport(base nethttp.RoundTripper, breaker *circuitbreaker.CircuitBreaker, retrier *retry.Retrier, library string) *ResilientTransport {
	if base == nil {
		base = nethttp.DefaultTransport
	}
	return &ResilientTransport{
		base:    base,
		breaker: breaker,
		retrier: retrier,
		library: library,
	}
}

// NewHTTPClient returns a client using the transport
func (t *ResilientTransport) NewHTTPClient(timeout time.Duration) *nethttp.Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &nethttp.Client{Transport: t, Timeout: timeout}
}

// RoundTrip implements http.RoundTripper
func (t *ResilientTransport) RoundTrip(req *nethttp.Request) (*nethttp.Response, error) {
	// the body is replayed on every attempt
	var body []byte
	if req.Body != nil && req.Body != nethttp.NoBody {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
	}

	ctx := req.Context()
	var last *nethttp.Response

	err := t.breaker.Execute(ctx, func(ctx context.Context) error {
		return t.retrier.Execute(ctx, func(ctx context.Context) error {
			last = nil
			attempt := req.Clone(ctx)
			if body != nil {
				attempt.Body = io.NopCloser(bytes.NewReader(body))
				attempt.ContentLength = int64(len(body))
			}

			var resp *nethttp.Response
			err := nrpkg.WithExternalSegment(ctx, t.library, req.Method, req.URL.String(), func() error {
				var err error
				resp, err = t.base.RoundTrip(attempt)
				return err
			})
			if err != nil {
				return err
			}

			if resp.StatusCode == nethttp.StatusTooManyRequests || resp.StatusCode >= 500 {
				last = buffered(resp)
				return &HTTPError{StatusCode: resp.StatusCode, Message: "server error"}
			}

			last = resp
			return nil
		})
	})

	if last != nil {
		return last, nil
	}
	return nil, err
}

// buffered reads the body of resp so it can be dropped or returned later
func buffered(resp *nethttp.Response) *nethttp.Response {
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return resp
}
