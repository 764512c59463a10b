package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	openai "github.com/sashabaranov/go-openai"

	"github.com/diogo/vestry/internal/api"
	apierrors "github.com/diogo/vestry/internal/errors"
)

// Gateway defaults
const (
	DefaultGatewayURL = "https://ai.gateway.lovable.dev/v1/chat/completions"
	DefaultModel      = "google/gemini-3-flash-preview"
)

// ErrMissingKey is returned when no gateway key is configured
var ErrMissingKey = errors.New("gateway API key is not configured")

// maxUpstreamErrorBody bounds how much of a failed upstream body is kept for logs
const maxUpstreamErrorBody = 8192

// Gateway opens streamed chat completions on an OpenAI-compatible endpoint
type Gateway struct {
	httpClient tls_client.HttpClient
	url        string
	apiKey     string
	model      string
}

// GatewayOption configures a Gateway
type GatewayOption func(*Gateway)

// WithGatewayURL overrides the completion endpoint
func WithGatewayURL(url string) GatewayOption {
	return func(g *Gateway) {
		if url != "" {
			g.url = url
		}
	}
}

// WithModel overrides the completion model
func WithModel(model string) GatewayOption {
	return func(g *Gateway) {
		if model != "" {
			g.model = model
		}
	}
}

// WithGatewayHTTPClient replaces the underlying HTTP client (used by tests)
func WithGatewayHTTPClient(httpClient tls_client.HttpClient) GatewayOption {
	return func(g *Gateway) {
		g.httpClient = httpClient
	}
}

// NewGateway creates a Gateway authenticating with apiKey. An empty key is
// accepted here and reported per request so the relay can still answer.
func NewGateway(apiKey string, opts ...GatewayOption) (*Gateway, error) {
	g := &Gateway{
		url:    DefaultGatewayURL,
		apiKey: strings.TrimSpace(apiKey),
		model:  DefaultModel,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.httpClient == nil {
		// No overall timeout: a completion stream stays open as long as it needs.
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(0),
			tls_client.WithClientProfile(profiles.Chrome_120),
		}
		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		g.httpClient = httpClient
	}
	return g, nil
}

// Model returns the completion model name
func (g *Gateway) Model() string {
	return g.model
}

// BuildRequest assembles the completion request: system prompt first, then
// the conversation as received
func (g *Gateway) BuildRequest(req *api.ChatRequest) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: BuildSystemPrompt(req.Wardrobe),
	})
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return openai.ChatCompletionRequest{
		Model:    g.model,
		Messages: messages,
		Stream:   true,
	}
}

// Open starts a streamed completion and returns its raw event-stream body.
// A non-success status is returned as *errors.APIError carrying the status
// and the upstream body.
func (g *Gateway) Open(ctx context.Context, req *api.ChatRequest) (io.ReadCloser, error) {
	if g.apiKey == "" {
		return nil, ErrMissingKey
	}

	payload, err := json.Marshal(g.BuildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	httpReq.Header.Set("Content-Type", api.ContentTypeJSON)

	start := time.Now()
	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apierrors.NewNetworkErrorWithEndpoint("completion", g.url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body []byte
		if resp.Body != nil {
			body, _ = io.ReadAll(io.LimitReader(resp.Body, maxUpstreamErrorBody))
			_ = resp.Body.Close()
		}
		return nil, apierrors.NewAPIErrorWithBody(resp.StatusCode, g.url,
			fmt.Sprintf("upstream failed after %s", time.Since(start).Round(time.Millisecond)), string(body))
	}
	if resp.Body == nil {
		return nil, apierrors.NewAPIError(resp.StatusCode, g.url, apierrors.ErrNoBody.Error())
	}
	return resp.Body, nil
}
