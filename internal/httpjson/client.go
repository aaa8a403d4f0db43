// Package httpjson issues JSON requests against one backend and decodes the
// responses into value.Value documents.
package httpjson

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/logging"

	"github.com/fundval/contractdiff/internal/version"
	"github.com/fundval/contractdiff/value"
)

// DefaultTimeout bounds a single request when none is configured.
const DefaultTimeout = 10 * time.Second

// Client talks to a single base URL. It is safe for concurrent use; WithToken
// returns a copy instead of mutating the receiver.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New returns a client for baseURL. A zero timeout means DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the backend root this client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// WithToken returns a copy of c that sends `Authorization: Bearer <token>`.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

// Response is a decoded HTTP exchange. Non-2xx statuses are not errors:
// callers compare them across backends.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
	JSON   value.Value
}

func (c *Client) Get(ctx context.Context, path string) (Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

func (c *Client) Post(ctx context.Context, path string, body any) (Response, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

func (c *Client) Patch(ctx context.Context, path string, body any) (Response, error) {
	return c.Do(ctx, http.MethodPatch, path, body)
}

func (c *Client) Put(ctx context.Context, path string, body any) (Response, error) {
	return c.Do(ctx, http.MethodPut, path, body)
}

func (c *Client) Delete(ctx context.Context, path string) (Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

// Do sends one request. body, when non-nil, is encoded as JSON. An empty
// response body decodes to null; any other body must be JSON.
func (c *Client) Do(ctx context.Context, method, path string, body any) (Response, error) {
	url := c.baseURL + path
	req, err := c.newRequest(ctx, method, url, body)
	if err != nil {
		return Response{}, err
	}

	status, header, data, err := c.roundTrip(req)
	if err != nil {
		return Response{}, &RequestError{Method: method, URL: url, Err: err}
	}

	resp := Response{Status: status, Header: header, Body: data, JSON: value.NullValue()}
	if len(bytes.TrimSpace(data)) == 0 {
		return resp, nil
	}
	doc, err := value.Parse(data)
	if err != nil {
		return Response{}, newDecodeError(method, url, status, data, err)
	}
	resp.JSON = doc
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s %s body: %w", method, url, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}

	userAgent := fmt.Sprintf("contractdiff/%s (%s)", version.Version, runtime.GOOS)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) roundTrip(req *http.Request) (int, http.Header, []byte, error) {
	logging.V(9).Infof("%s %s", req.Method, req.URL)
	// Level 11 because headers carry bearer tokens.
	logging.V(11).Infof("request headers: %v", req.Header)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, nil, err
	}
	defer contract.IgnoreClose(resp.Body)

	logging.V(11).Infof("response headers: %v", resp.Header)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("reading body: %w", err)
	}
	logging.V(9).Infof("%s %s -> %d (%d bytes, %s)", req.Method, req.URL, resp.StatusCode, len(data),
		time.Since(start).Round(time.Millisecond))
	return resp.StatusCode, resp.Header, data, nil
}
