package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const (
	userAgent = "edit-relay/0.1"

	defaultDialTimeout     = 10 * time.Second
	defaultKeepAlive       = 30 * time.Second
	defaultIdleConnTimeout = 90 * time.Second

	maxResponseBytes = 8 << 20 // 8 MiB
)

// ErrResponseTooLarge indicates the provider body exceeded maxResponseBytes.
var ErrResponseTooLarge = errors.New("upstream response body too large")

// Client performs a single outbound POST.
//
// A non-nil error means no usable HTTP response was received (DNS, connect,
// TLS, timeout, body read). Any received status, including 4xx/5xx, is
// returned with a nil error.
type Client interface {
	Post(ctx context.Context, url string, headers map[string]string, body []byte, timeout time.Duration) (int, []byte, error)
}

// HTTPClient implements Client over net/http.
type HTTPClient struct {
	client *http.Client
}

// NewHTTPClient constructs a client with a tuned transport. Per-call deadlines
// are applied through the context passed to Post.
func NewHTTPClient() *HTTPClient {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAlive}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          50,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &HTTPClient{
		client: &http.Client{
			Transport: transport,
			// Redirects are returned to the caller as received.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *HTTPClient) Post(ctx context.Context, url string, headers map[string]string, body []byte, timeout time.Duration) (int, []byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("construct request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return 0, nil, fmt.Errorf("read upstream body: %w", err)
	}
	if len(data) > maxResponseBytes {
		return 0, nil, ErrResponseTooLarge
	}

	return resp.StatusCode, data, nil
}
