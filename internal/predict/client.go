// Package predict calls the remote churn prediction service.
package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/verte-zerg/churnform/internal/logging"
	"github.com/verte-zerg/churnform/internal/model"
)

// DefaultEndpoint is the compiled-in prediction service URL.
const DefaultEndpoint = "https://churn-prediction-api-q7sr.onrender.com/predict"

const statusSnippetLimit = 512

// Client posts prediction requests to a fixed endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	log        *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New returns a Client for endpoint.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{},
		log:        logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Predict sends one request. It does not retry. A nil result with a nil
// error means the service answered with a JSON null body.
func (c *Client) Predict(ctx context.Context, req model.PredictionRequest) (*model.PredictionResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &Error{Kind: KindEncode, Err: err}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.log.Debug("prediction response",
		"endpoint", c.endpoint,
		"status", resp.StatusCode,
		"elapsed_ms", time.Since(started).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, statusSnippetLimit))
		return nil, &Error{
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s: %s", resp.Status, bytes.TrimSpace(snippet)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, StatusCode: resp.StatusCode, Err: err}
	}
	result, err := decodeResult(body)
	if err != nil {
		return nil, &Error{Kind: KindDecode, StatusCode: resp.StatusCode, Err: err}
	}
	return result, nil
}

// ValidateEndpoint checks that endpoint is an absolute http(s) URL.
func ValidateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid endpoint %q: scheme must be http or https", endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: missing host", endpoint)
	}
	return nil
}
