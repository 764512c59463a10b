package api

import (
	"io"
	"net/url"
	"sync"

	http "github.com/bogdanfinn/fhttp"
	"github.com/bogdanfinn/tls-client/bandwidth"
)

// MockResponseBody is a ReadCloser that hands out its data in fixed-size
// chunks, simulating a body arriving over the network
type MockResponseBody struct {
	data      []byte
	pos       int
	chunkSize int
	readErr   error
	mu        sync.Mutex
	closed    bool
}

// NewMockResponseBody creates a body that returns everything on the first read
func NewMockResponseBody(data []byte) *MockResponseBody {
	return &MockResponseBody{data: data}
}

// NewChunkedResponseBody creates a body returning at most chunkSize bytes per read
func NewChunkedResponseBody(data []byte, chunkSize int) *MockResponseBody {
	return &MockResponseBody{data: data, chunkSize: chunkSize}
}

// FailAfter makes the body return err once its data is exhausted instead of io.EOF
func (m *MockResponseBody) FailAfter(err error) *MockResponseBody {
	m.readErr = err
	return m
}

// Read implements the io.Reader interface
func (m *MockResponseBody) Read(p []byte) (n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, io.ErrClosedPipe
	}
	if m.pos >= len(m.data) {
		if m.readErr != nil {
			return 0, m.readErr
		}
		return 0, io.EOF
	}

	end := len(m.data)
	if m.chunkSize > 0 && m.pos+m.chunkSize < end {
		end = m.pos + m.chunkSize
	}
	n = copy(p, m.data[m.pos:end])
	m.pos += n
	return n, nil
}

// Close implements the io.Closer interface
func (m *MockResponseBody) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called
func (m *MockResponseBody) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// MockHttpClient is a mock implementation of tls_client.HttpClient for testing.
// It records every request it receives.
type MockHttpClient struct {
	Response *http.Response
	Err      error

	mu       sync.Mutex
	requests []*http.Request
	bodies   [][]byte
}

// GetCookies implements the tls_client.HttpClient interface
func (m *MockHttpClient) GetCookies(u *url.URL) []*http.Cookie {
	return nil
}

// SetCookies implements the tls_client.HttpClient interface
func (m *MockHttpClient) SetCookies(u *url.URL, cookies []*http.Cookie) {}

// SetCookieJar implements the tls_client.HttpClient interface
func (m *MockHttpClient) SetCookieJar(jar http.CookieJar) {}

// GetCookieJar implements the tls_client.HttpClient interface
func (m *MockHttpClient) GetCookieJar() http.CookieJar {
	return nil
}

// SetProxy implements the tls_client.HttpClient interface
func (m *MockHttpClient) SetProxy(proxyUrl string) error {
	return nil
}

// GetProxy implements the tls_client.HttpClient interface
func (m *MockHttpClient) GetProxy() string {
	return ""
}

// SetFollowRedirect implements the tls_client.HttpClient interface
func (m *MockHttpClient) SetFollowRedirect(followRedirect bool) {}

// GetFollowRedirect implements the tls_client.HttpClient interface
func (m *MockHttpClient) GetFollowRedirect() bool {
	return false
}

// CloseIdleConnections implements the tls_client.HttpClient interface
func (m *MockHttpClient) CloseIdleConnections() {}

// Do implements the tls_client.HttpClient interface
func (m *MockHttpClient) Do(req *http.Request) (*http.Response, error) {
	m.record(req)
	return m.Response, m.Err
}

// Get implements the tls_client.HttpClient interface
func (m *MockHttpClient) Get(url string) (*http.Response, error) {
	return m.Response, m.Err
}

// Head implements the tls_client.HttpClient interface
func (m *MockHttpClient) Head(url string) (*http.Response, error) {
	return m.Response, m.Err
}

// Post implements the tls_client.HttpClient interface
func (m *MockHttpClient) Post(url, contentType string, body io.Reader) (*http.Response, error) {
	return m.Response, m.Err
}

// GetBandwidthTracker implements the tls_client.HttpClient interface
func (m *MockHttpClient) GetBandwidthTracker() bandwidth.BandwidthTracker {
	return nil
}

// Requests returns the requests seen so far
func (m *MockHttpClient) Requests() []*http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*http.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastBody returns the body of the most recent request, or nil
func (m *MockHttpClient) LastBody() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.bodies) == 0 {
		return nil
	}
	return m.bodies[len(m.bodies)-1]
}

func (m *MockHttpClient) record(req *http.Request) {
	var body []byte
	if req != nil && req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
	}
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.bodies = append(m.bodies, body)
	m.mu.Unlock()
}

// NewMockHttpClient creates a MockHttpClient answering with body and statusCode
func NewMockHttpClient(body []byte, statusCode int) *MockHttpClient {
	return NewMockHttpClientWithBody(NewMockResponseBody(body), statusCode)
}

// NewMockHttpClientWithBody creates a MockHttpClient answering with a prepared body
func NewMockHttpClientWithBody(body io.ReadCloser, statusCode int) *MockHttpClient {
	return &MockHttpClient{
		Response: &http.Response{
			StatusCode: statusCode,
			Body:       body,
			Header:     make(http.Header),
		},
	}
}

// NewMockHttpClientWithError creates a new MockHttpClient that returns an error
func NewMockHttpClientWithError(err error) *MockHttpClient {
	return &MockHttpClient{
		Response: nil,
		Err:      err,
	}
}
