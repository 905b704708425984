package workbench

import (
	"errors"
	"net"
	"net/http"
	"time"
)

const (
	// connectTimeout bounds TCP connection establishment.
	connectTimeout = 10 * time.Second

	// readTimeout bounds the wait for response headers. It deliberately
	// does not bound body reads, which may be long-lived (SSE sessions,
	// file downloads).
	readTimeout = 60 * time.Second

	// connectRetries is the number of additional connection attempts made
	// when a request fails before any bytes reach the service.
	connectRetries = 3
)

// NewTransport returns the default workbench transport: a connection-retry
// wrapper around an http.Transport with a fixed connect timeout and
// response-header timeout. Retries apply only to dial-level failures, never
// to requests that already reached the service.
func NewTransport() http.RoundTripper {
	dialer := &net.Dialer{Timeout: connectTimeout}

	return &retryTransport{
		base: &http.Transport{
			DialContext:           dialer.DialContext,
			ResponseHeaderTimeout: readTimeout,
			ForceAttemptHTTP2:     true,
		},
		retries: connectRetries,
	}
}

// retryTransport retries requests that fail at the connection level.
type retryTransport struct {
	base    http.RoundTripper
	retries int
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)

	for attempt := 0; attempt < t.retries; attempt++ {
		if err == nil || !isConnectionError(err) {
			return resp, err
		}
		if req.Context().Err() != nil {
			return nil, err
		}

		// Requests with a consumed, non-replayable body cannot be
		// retried safely.
		if req.Body != nil {
			if req.GetBody == nil {
				return nil, err
			}
			body, bodyErr := req.GetBody()
			if bodyErr != nil {
				return nil, err
			}
			req.Body = body
		}

		resp, err = t.base.RoundTrip(req)
	}

	return resp, err
}

// isConnectionError reports whether err is a dial-level failure: the
// connection was never established, so no request bytes reached the
// service and a retry is safe for any method.
func isConnectionError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}
	return false
}

// closeIdleConnections releases idle connections held by the transport, if
// it supports doing so.
func closeIdleConnections(rt http.RoundTripper) {
	type idleCloser interface {
		CloseIdleConnections()
	}

	switch t := rt.(type) {
	case *retryTransport:
		closeIdleConnections(t.base)
	case idleCloser:
		t.CloseIdleConnections()
	}
}
