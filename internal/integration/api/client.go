// Package api is the REST client for the bookmark backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Options configures a Client.
type Options struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 means unlimited
	Burst     int
	UserAgent string

	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client talks to the backend REST API. It is safe for concurrent use.
// Concurrent identical GETs share one request.
type Client struct {
	base      *url.URL
	token     string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
	group     singleflight.Group
	log       zerolog.Logger
}

// New creates a Client.
func New(opts Options, log zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("parse base url: %q is not absolute", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = "linkgenie"
	}

	return &Client{
		base:      base,
		token:     opts.Token,
		userAgent: ua,
		http:      httpClient,
		limiter:   rate.NewLimiter(limit, burst),
		log:       log,
	}, nil
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// request describes one API call.
type request struct {
	method   string
	path     string
	query    url.Values
	body     any
	accept   string // defaults to application/json
	notFound error  // sentinel wrapped on 404
}

// do performs req and decodes a JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, req request, out any) error {
	data, err := c.send(ctx, req)
	if err != nil {
		return err
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", req.method, req.path, err)
	}
	return nil
}

// send performs req and returns the body of a 2xx response.
func (c *Client) send(ctx context.Context, req request) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}

	u := *c.base
	u.Path = c.base.Path + req.path
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("%s %s: encode body: %w", req.method, req.path, err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	accept := req.accept
	if accept == "" {
		accept = "application/json"
	}
	httpReq.Header.Set("Accept", accept)
	httpReq.Header.Set("User-Agent", c.userAgent)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s %s: %w", req.method, req.path, ctxErr)
		}
		return nil, fmt.Errorf("%s %s: %w: %w", req.method, req.path, ErrOffline, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Debug().Err(err).Msg("close response body")
		}
	}()

	c.log.Debug().
		Str("method", req.method).
		Str("path", req.path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", req.method, req.path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		notFound := req.notFound
		if notFound == nil {
			notFound = ErrNotFound
		}
		return nil, newStatusError(req.method, req.path, resp.StatusCode, data, notFound)
	}
	return data, nil
}

// get shares concurrent identical GETs. The shared call runs detached from
// any single caller's cancellation; each caller still returns on its own ctx.
func get[T any](ctx context.Context, c *Client, req request) (T, error) {
	key := req.path
	if len(req.query) > 0 {
		key += "?" + req.query.Encode()
	}

	ch := c.group.DoChan(key, func() (any, error) {
		var out T
		err := c.do(context.WithoutCancel(ctx), req, &out)
		return out, err
	})

	select {
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("%s %s: %w", req.method, req.path, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// Health is the response of the backend health endpoint.
type Health struct {
	Status string `json:"status"`
}

// Health queries the unauthenticated health endpoint.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	if err := c.do(ctx, request{method: http.MethodGet, path: "/health"}, &h); err != nil {
		return Health{}, err
	}
	if h.Status == "" {
		return Health{}, errors.New("health: empty status")
	}
	return h, nil
}

// HealthStatus returns only the status string of Health.
func (c *Client) HealthStatus(ctx context.Context) (string, error) {
	h, err := c.Health(ctx)
	return h.Status, err
}
