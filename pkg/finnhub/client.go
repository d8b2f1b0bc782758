// Package finnhub is a client for the finnhub.io REST API: symbol search,
// market and company news, candles and basic financial metrics.
package finnhub

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

	"golang.org/x/exp/slog"
)

// DefaultBaseURL is the root of the finnhub REST API.
const DefaultBaseURL = "https://finnhub.io/api/v1/"

const day = 24 * time.Hour

// Client makes requests to finnhub. Its configuration is immutable after
// construction, so a single instance may be shared between goroutines.
type Client struct {
	log     *slog.Logger
	cl      *http.Client
	baseURL string
	token   string
	now     func() time.Time
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the API root, tests point it to a local server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithClock sets the time source used for date ranges.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) Option {
	return func(c *Client) { c.log = lg }
}

// NewClient makes a new finnhub client.
func NewClient(cl *http.Client, token string, opts ...Option) *Client {
	c := &Client{
		log:     slog.Default(),
		cl:      cl,
		baseURL: DefaultBaseURL,
		token:   token,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if !strings.HasSuffix(c.baseURL, "/") {
		c.baseURL += "/"
	}

	return c
}

// param is a single query parameter, kept in a slice to preserve order.
type param struct {
	name, value string
}

// buildURL renders base + endpoint + "?" + params, with the token last.
func (c *Client) buildURL(endpoint string, params ...param) (string, error) {
	params = append(params, param{name: "token", value: c.token})

	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p.name+"="+escape(p.value))
	}

	u := c.baseURL + endpoint + "?" + strings.Join(parts, "&")
	if _, err := url.ParseRequestURI(u); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	return u, nil
}

// escape query-escapes the value, encoding spaces as %20 rather than "+".
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// get performs a GET to the endpoint and decodes the response body into v.
func (c *Client) get(ctx context.Context, v any, endpoint string, params ...param) error {
	u, err := c.buildURL(endpoint, params...)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrInvalidURL, err)
	}

	resp, err := c.cl.Do(req)
	if err != nil {
		return fmt.Errorf("%w: do request: %w", ErrTransport, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.WarnCtx(ctx, "failed to close response body", slog.Any("err", err))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}

	ok := resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices
	if !ok {
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: snippet(body)}
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		return fmt.Errorf("%w: %s", ErrNoDataReturned, endpoint)
	}

	if err = json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, endpoint, err)
	}

	return nil
}

func snippet(body []byte) string {
	const maxLen = 256
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}

// decodeRequired unmarshals an object into v after checking that every one
// of the required keys is present in it and is not null.
func decodeRequired(data []byte, v any, required ...string) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var missing []string
	for _, name := range required {
		if raw, ok := fields[name]; !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return errors.New("missing required fields: " + strings.Join(missing, ", "))
	}

	return json.Unmarshal(data, v)
}
