package commands

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/diogo/vestry/internal/api"
	"github.com/diogo/vestry/internal/render"
	"github.com/diogo/vestry/internal/tui"
)

const navyReply = `data: {"choices":[{"delta":{"content":"Pair the "}}]}
data: {"choices":[{"delta":{"content":"navy blazer."}}]}
data: [DONE]
`

// recordingTransport returns a fresh body per call and keeps every request
type recordingTransport struct {
	mu       sync.Mutex
	open     func() (io.ReadCloser, error)
	requests []*api.ChatRequest
}

func (r *recordingTransport) OpenStream(ctx context.Context, req *api.ChatRequest) (io.ReadCloser, error) {
	r.mu.Lock()
	r.requests = append(r.requests, req)
	r.mu.Unlock()
	return r.open()
}

func (r *recordingTransport) last(t *testing.T) *api.ChatRequest {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.requests) == 0 {
		t.Fatal("no request was sent")
	}
	return r.requests[len(r.requests)-1]
}

func replyTransport(body string) *recordingTransport {
	return &recordingTransport{open: func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(body)), nil
	}}
}

// fakeTUI records the session instead of starting bubbletea
type fakeTUI struct {
	session  tui.ChatSession
	opts     render.Options
	subtitle string
}

func (f *fakeTUI) RunChat(session tui.ChatSession, opts render.Options, subtitle string) error {
	f.session = session
	f.opts = opts
	f.subtitle = subtitle
	return nil
}

type testEnv struct {
	deps      *Dependencies
	transport *recordingTransport
	tui       *fakeTUI
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
	copied    []string
	dir       string
}

// newTestEnv isolates HOME and wires in-memory dependencies
func newTestEnv(t *testing.T, transport *recordingTransport) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	env := &testEnv{
		transport: transport,
		tui:       &fakeTUI{},
		stdout:    &bytes.Buffer{},
		stderr:    &bytes.Buffer{},
		dir:       dir,
	}
	env.deps = &Dependencies{
		Transport: transport,
		TUI:       env.tui,
		CopyText: func(s string) error {
			env.copied = append(env.copied, s)
			return nil
		},
		IsTerminal: func() bool { return false },
		Stdin:      strings.NewReader(""),
		Stdout:     env.stdout,
		Stderr:     env.stderr,
	}
	return env
}

func (e *testEnv) path(name string) string {
	return filepath.Join(e.dir, name)
}

func (e *testEnv) run(t *testing.T, args ...string) error {
	t.Helper()
	return e.runContext(t, context.Background(), args...)
}

func (e *testEnv) runContext(t *testing.T, ctx context.Context, args ...string) error {
	t.Helper()
	cmd := NewRootCmd(e.deps)
	cmd.SetOut(e.stdout)
	cmd.SetErr(e.stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}
