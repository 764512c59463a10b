package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/vestry/internal/errors"
)

// DefaultTimeout bounds a whole streamed reply
const DefaultTimeout = 300 * time.Second

// Client sends chat requests to the relay endpoint and hands back the
// streamed body
type Client struct {
	httpClient tls_client.HttpClient
	endpoint   string
	apiKey     string
	timeout    time.Duration
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithAPIKey sets the bearer key sent with every request
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient replaces the underlying HTTP client (used by tests)
func WithHTTPClient(httpClient tls_client.HttpClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the overall request timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// NewClient creates a Client for the relay at endpoint
func NewClient(endpoint string, opts ...ClientOption) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("relay endpoint cannot be empty")
	}

	client := &Client{
		endpoint: endpoint,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(int(client.timeout / time.Second)),
			tls_client.WithClientProfile(profiles.Chrome_120),
		}
		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// Endpoint returns the relay URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

// OpenStream posts req and returns the event-stream body once the relay has
// accepted it. The caller must close the body. Non-success statuses become
// typed errors carrying the relay's {"error": ...} message.
func (c *Client) OpenStream(ctx context.Context, req *ChatRequest) (io.ReadCloser, error) {
	if req == nil {
		return nil, fmt.Errorf("chat request cannot be nil")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", ContentTypeJSON)
	httpReq.Header.Set("Accept", ContentTypeEventStream)
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apierrors.NewNetworkErrorWithEndpoint("open stream", c.endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() {
			if resp.Body != nil {
				_ = resp.Body.Close()
			}
		}()
		return nil, c.statusError(resp)
	}

	if resp.Body == nil {
		return nil, apierrors.NewAPIError(resp.StatusCode, c.endpoint, apierrors.ErrNoBody.Error())
	}
	return resp.Body, nil
}

// statusError maps a failed response onto the error taxonomy
func (c *Client) statusError(resp *http.Response) error {
	var body []byte
	if resp.Body != nil {
		body, _ = io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	}

	var message string
	if gjson.ValidBytes(body) {
		message = gjson.GetBytes(body, PathError).String()
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return apierrors.NewRateLimitError(orDefault(message, apierrors.RateLimitMessage))
	case http.StatusPaymentRequired:
		return apierrors.NewUsageLimitError(orDefault(message, apierrors.UsageLimitMessage))
	default:
		return apierrors.NewAPIErrorWithBody(resp.StatusCode, c.endpoint, orDefault(message, apierrors.RequestFailed), string(body))
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
