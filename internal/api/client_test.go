package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	apierrors "github.com/diogo/vestry/internal/errors"
)

const testEndpoint = "https://relay.example.com/functions/v1/outfit-chat"

func sampleRequest() *ChatRequest {
	return &ChatRequest{
		Messages: []Message{
			{Role: RoleAssistant, Content: "Hi! I'm your personal stylist"},
			{Role: RoleUser, Content: "Dinner tonight?"},
		},
		Wardrobe: []WardrobeItem{
			{Name: "Silk Blouse", Category: "Tops", Color: "Ivory White", Brand: "Massimo Dutti", Tags: []string{"office"}},
			{Name: "Plain Tee", Category: "Tops", Color: "White"},
		},
	}
}

func TestNewClient(t *testing.T) {
	mock := NewMockHttpClient(nil, 200)

	tests := []struct {
		name     string
		endpoint string
		wantErr  bool
	}{
		{"valid endpoint", testEndpoint, false},
		{"trimmed endpoint", "  " + testEndpoint + " ", false},
		{"empty endpoint", "", true},
		{"blank endpoint", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.endpoint, WithHTTPClient(mock))
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewClient() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && client.Endpoint() != testEndpoint {
				t.Errorf("Endpoint() = %q, want %q", client.Endpoint(), testEndpoint)
			}
		})
	}
}

func TestOpenStream_Success(t *testing.T) {
	stream := "data: {\"choices\":[{\"delta\":{\"content\":\"Hi\"}}]}\n\ndata: [DONE]\n"
	mock := NewMockHttpClient([]byte(stream), 200)
	client, err := NewClient(testEndpoint, WithHTTPClient(mock), WithAPIKey("pk_test"))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	body, err := client.OpenStream(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("OpenStream() error = %v", err)
	}
	defer body.Close()

	got, _ := io.ReadAll(body)
	if string(got) != stream {
		t.Errorf("body = %q, want %q", got, stream)
	}

	reqs := mock.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	req := reqs[0]
	if req.Method != "POST" {
		t.Errorf("Method = %s, want POST", req.Method)
	}
	if req.URL.String() != testEndpoint {
		t.Errorf("URL = %s, want %s", req.URL, testEndpoint)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer pk_test" {
		t.Errorf("Authorization = %q", got)
	}
	if got := req.Header.Get("Content-Type"); got != ContentTypeJSON {
		t.Errorf("Content-Type = %q", got)
	}
	if got := req.Header.Get("Accept"); got != ContentTypeEventStream {
		t.Errorf("Accept = %q", got)
	}

	var sent ChatRequest
	if err := json.Unmarshal(mock.LastBody(), &sent); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if len(sent.Messages) != 2 || sent.Messages[1].Content != "Dinner tonight?" {
		t.Errorf("messages = %+v", sent.Messages)
	}
	if len(sent.Wardrobe) != 2 || sent.Wardrobe[0].Brand != "Massimo Dutti" {
		t.Errorf("wardrobe = %+v", sent.Wardrobe)
	}
}

func TestOpenStream_OmitsEmptyOptionalFields(t *testing.T) {
	mock := NewMockHttpClient(nil, 200)
	client, _ := NewClient(testEndpoint, WithHTTPClient(mock))

	if _, err := client.OpenStream(context.Background(), sampleRequest()); err != nil {
		t.Fatalf("OpenStream() error = %v", err)
	}

	var raw struct {
		Wardrobe []map[string]any `json:"wardrobe"`
	}
	if err := json.Unmarshal(mock.LastBody(), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := raw.Wardrobe[1]["brand"]; ok {
		t.Error("empty brand should be omitted")
	}
	if _, ok := raw.Wardrobe[1]["tags"]; ok {
		t.Error("empty tags should be omitted")
	}
	if len(mock.Requests()) == 1 && mock.Requests()[0].Header.Get("Authorization") != "" {
		t.Error("no Authorization header expected without an API key")
	}
}

func TestOpenStream_StatusErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		check      func(error) bool
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "rate limited",
			status:     429,
			body:       `{"error":"Rate limit reached. Please try again in a moment."}`,
			check:      apierrors.IsRateLimitError,
			wantStatus: 429,
			wantMsg:    apierrors.RateLimitMessage,
		},
		{
			name:       "out of credits",
			status:     402,
			body:       `{"error":"Usage limit reached. Please add credits to continue."}`,
			check:      apierrors.IsUsageLimitError,
			wantStatus: 402,
			wantMsg:    apierrors.UsageLimitMessage,
		},
		{
			name:   "server error",
			status: 500,
			body:   `{"error":"AI service unavailable. Please try again."}`,
			check: func(err error) bool {
				var apiErr *apierrors.APIError
				return errors.As(err, &apiErr)
			},
			wantStatus: 500,
			wantMsg:    apierrors.UnavailableMessage,
		},
		{
			name:   "non json body",
			status: 502,
			body:   "<html>bad gateway</html>",
			check: func(err error) bool {
				var apiErr *apierrors.APIError
				return errors.As(err, &apiErr) && apiErr.Body == "<html>bad gateway</html>"
			},
			wantStatus: 502,
			wantMsg:    apierrors.RequestFailed,
		},
		{
			name:       "rate limited without body",
			status:     429,
			body:       "",
			check:      apierrors.IsRateLimitError,
			wantStatus: 429,
			wantMsg:    apierrors.RateLimitMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := NewMockResponseBody([]byte(tt.body))
			mock := NewMockHttpClientWithBody(body, tt.status)
			client, _ := NewClient(testEndpoint, WithHTTPClient(mock))

			rc, err := client.OpenStream(context.Background(), sampleRequest())
			if err == nil {
				rc.Close()
				t.Fatal("expected error")
			}
			if !tt.check(err) {
				t.Errorf("unexpected error type: %T %v", err, err)
			}
			if got := apierrors.GetHTTPStatus(err); got != tt.wantStatus {
				t.Errorf("GetHTTPStatus() = %d, want %d", got, tt.wantStatus)
			}
			if got := apierrors.UserMessage(err); got != tt.wantMsg {
				t.Errorf("UserMessage() = %q, want %q", got, tt.wantMsg)
			}
			if !body.Closed() {
				t.Error("error body should be closed")
			}
		})
	}
}

func TestOpenStream_NetworkError(t *testing.T) {
	mock := NewMockHttpClientWithError(errors.New("dial tcp: connection refused"))
	client, _ := NewClient(testEndpoint, WithHTTPClient(mock))

	_, err := client.OpenStream(context.Background(), sampleRequest())
	if !apierrors.IsNetworkError(err) {
		t.Fatalf("expected NetworkError, got %T %v", err, err)
	}
}

func TestOpenStream_CancelledContext(t *testing.T) {
	mock := NewMockHttpClientWithError(errors.New("request canceled"))
	client, _ := NewClient(testEndpoint, WithHTTPClient(mock))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.OpenStream(ctx, sampleRequest())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("OpenStream() error = %v, want context.Canceled", err)
	}
}

func TestOpenStream_MissingBody(t *testing.T) {
	mock := NewMockHttpClient(nil, 200)
	mock.Response.Body = nil
	client, _ := NewClient(testEndpoint, WithHTTPClient(mock))

	_, err := client.OpenStream(context.Background(), sampleRequest())
	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T %v", err, err)
	}
}

func TestOpenStream_NilRequest(t *testing.T) {
	client, _ := NewClient(testEndpoint, WithHTTPClient(NewMockHttpClient(nil, 200)))
	if _, err := client.OpenStream(context.Background(), nil); err == nil {
		t.Error("expected error for nil request")
	}
}
