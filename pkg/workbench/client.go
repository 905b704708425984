package workbench

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// RequestHeaders is implemented by the identity header types.
type RequestHeaders interface {
	ToHeaders() http.Header
}

// client holds the state shared by all resource clients built from the same
// builder: base URL, transport, and the identity headers bound at
// construction time. The headers are read-only after construction, so a
// client is safe for concurrent use.
type client struct {
	baseURL    string
	httpClient *http.Client
	headers    http.Header
	logger     *slog.Logger
}

func newClient(baseURL string, httpClient *http.Client, logger *slog.Logger, identity ...RequestHeaders) *client {
	headers := make(http.Header)
	for _, h := range identity {
		for name, values := range h.ToHeaders() {
			headers[name] = values
		}
	}

	return &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		headers:    headers,
		logger:     logger,
	}
}

// newRequest builds a request for the given path (relative to the base
// URL), attaching the bound identity headers and the caller's correlation
// identifier.
func (c *client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("workbench: building %s %s request: %w", method, path, err)
	}

	for name, values := range c.headers {
		req.Header[name] = values
	}
	req.Header.Set(HeaderCorrelationID, CorrelationID(ctx))

	return req, nil
}

// do performs a single JSON request. A non-nil in is serialized as the JSON
// request body; a non-nil out receives the decoded response body. Non-2xx
// statuses are returned as *StatusError; callers that treat 404 as an empty
// result check with IsNotFound.
func (c *client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("workbench: encoding %s %s request body: %w", method, path, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("workbench: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("workbench request", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(method, path, resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &SchemaError{Shape: fmt.Sprintf("%T", out), Err: err}
	}

	return nil
}

// doStream performs a request whose response body the caller consumes
// incrementally (file reads, SSE sessions). On success the caller owns the
// response and must close its body on every exit path; on a non-2xx status
// the body is drained and closed here.
func (c *client) doStream(ctx context.Context, method, path string, query url.Values) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, path, query, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("workbench: %s %s: %w", method, path, err)
	}

	c.logger.Debug("workbench stream request", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, newStatusError(method, path, resp)
	}

	return resp, nil
}

// newStatusError reads the response body into a *StatusError. Body read
// failures are ignored: the status code is the primary signal.
func newStatusError(method, path string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	return &StatusError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Body:       body,
	}
}
