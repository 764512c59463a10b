package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/diogo/vestry/internal/api"
	"github.com/diogo/vestry/internal/stream"
)

var (
	ErrEmptyMessage  = errors.New("message is empty")
	ErrBusy          = errors.New("a reply is still streaming")
	ErrSessionClosed = errors.New("session is closed")
)

// State is the session lifecycle position
type State int

const (
	StateIdle State = iota
	StateSending
	StateStreaming
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Transport opens the streamed reply for a request. *api.Client implements it.
type Transport interface {
	OpenStream(ctx context.Context, req *api.ChatRequest) (io.ReadCloser, error)
}

// WardrobeSource supplies the items sent with every request
type WardrobeSource interface {
	Wire() []api.WardrobeItem
}

// UpdateFunc receives a snapshot of the conversation after every change
type UpdateFunc func(turns []Turn)

// Session owns a conversation and runs at most one streamed reply at a time
type Session struct {
	transport Transport
	wardrobe  WardrobeSource
	assembler *stream.Assembler
	logger    *log.Logger
	onState   func(State)

	mu      sync.RWMutex // Protects everything below
	conv    *Conversation
	state   State
	run     uint64 // bumped per Send, Reset and Close; stale runs stop writing
	cancel  context.CancelFunc
	closed  bool
	lastErr error
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithWardrobe sets the wardrobe sent with each request
func WithWardrobe(w WardrobeSource) SessionOption {
	return func(s *Session) {
		s.wardrobe = w
	}
}

// WithAssembler replaces the default stream assembler
func WithAssembler(a *stream.Assembler) SessionOption {
	return func(s *Session) {
		if a != nil {
			s.assembler = a
		}
	}
}

// WithSessionLogger sets the session logger
func WithSessionLogger(logger *log.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStateHook registers a callback for every state transition
func WithStateHook(fn func(State)) SessionOption {
	return func(s *Session) {
		s.onState = fn
	}
}

// NewSession creates a session that opens with the greeting turn
func NewSession(transport Transport, opts ...SessionOption) *Session {
	s := &Session{
		transport: transport,
		logger:    log.New(io.Discard),
		conv:      NewConversation(Turn{Role: RoleAssistant, Content: Greeting}),
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.assembler == nil {
		s.assembler = stream.NewAssembler(stream.WithLogger(s.logger))
	}
	return s
}

// Send posts text as a user turn and streams the reply into the conversation.
// onUpdate may be nil. A transport or read failure appends FallbackReply and
// returns the error; cancellation returns ctx.Err() with no fallback.
// Send blocks until the reply is complete.
func (s *Session) Send(ctx context.Context, text string, onUpdate UpdateFunc) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrBusy
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.run++
	run := s.run
	s.cancel = cancel
	s.lastErr = nil
	s.conv.AppendUser(text)
	req := &api.ChatRequest{Messages: s.conv.Messages(), Wardrobe: s.wardrobeItems()}
	snapshot := s.conv.Turns()
	s.state = StateSending
	s.mu.Unlock()
	defer cancel()

	s.emitState(StateSending)
	notify(onUpdate, snapshot)

	body, err := s.transport.OpenStream(runCtx, req)
	if err != nil {
		if runCtx.Err() != nil {
			return s.finish(run, runCtx.Err())
		}
		return s.fail(run, err, onUpdate)
	}
	defer body.Close()

	if !s.transition(run, StateStreaming) {
		return s.finish(run, context.Canceled)
	}

	result, err := s.assembler.Run(runCtx, body, func(d stream.Delta) {
		s.mu.Lock()
		if s.run != run || runCtx.Err() != nil {
			s.mu.Unlock()
			return
		}
		s.conv.UpdateAssistant(d.Text)
		snapshot := s.conv.Turns()
		s.mu.Unlock()
		notify(onUpdate, snapshot)
	})
	if err != nil {
		if runCtx.Err() != nil {
			return s.finish(run, runCtx.Err())
		}
		return s.fail(run, err, onUpdate)
	}

	s.logger.Debug("reply complete",
		"deltas", result.Deltas,
		"terminated", result.Terminated,
		"skipped", result.Skipped,
		"dropped", result.Dropped)
	return s.finish(run, nil)
}

// transition moves an active run to state; false if the run was superseded
func (s *Session) transition(run uint64, state State) bool {
	s.mu.Lock()
	if s.run != run || s.closed {
		s.mu.Unlock()
		return false
	}
	s.state = state
	s.mu.Unlock()
	s.emitState(state)
	return true
}

// finish seals the reply and returns to Idle, passing err through
func (s *Session) finish(run uint64, err error) error {
	s.mu.Lock()
	if s.run != run {
		s.mu.Unlock()
		return err
	}
	s.conv.Seal()
	s.cancel = nil
	s.state = StateIdle
	s.mu.Unlock()
	s.emitState(StateIdle)
	return err
}

// fail records err, appends the fallback reply and returns to Idle
func (s *Session) fail(run uint64, err error, onUpdate UpdateFunc) error {
	s.mu.Lock()
	if s.run != run {
		s.mu.Unlock()
		return err
	}
	s.state = StateFailed
	s.lastErr = err
	s.conv.AppendAssistant(FallbackReply)
	snapshot := s.conv.Turns()
	s.mu.Unlock()

	s.logger.Warn("reply failed", "error", err)
	s.emitState(StateFailed)
	notify(onUpdate, snapshot)
	return s.finish(run, err)
}

// Cancel stops the reply in progress, if any. The partial reply is kept.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Reset stops any reply in progress and restarts the conversation
func (s *Session) Reset() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.run++
	s.conv = NewConversation(Turn{Role: RoleAssistant, Content: ResetGreeting})
	changed := s.state != StateIdle
	s.state = StateIdle
	s.lastErr = nil
	s.mu.Unlock()
	if changed {
		s.emitState(StateIdle)
	}
}

// Close stops any reply in progress. No delta is applied after Close returns.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.run++
	s.closed = true
	s.conv.Seal()
	s.state = StateIdle
	return nil
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Turns returns a copy of the conversation
func (s *Session) Turns() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conv.Turns()
}

// LastReply returns the content of the latest assistant turn
func (s *Session) LastReply() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.conv.turns
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == RoleAssistant {
			return turns[i].Content
		}
	}
	return ""
}

// LastError returns the error of the most recent failed reply
func (s *Session) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// ShowQuickPrompts reports whether only the greeting has been exchanged
func (s *Session) ShowQuickPrompts() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conv.Len() <= 1
}

// wardrobeItems must be called with s.mu held
func (s *Session) wardrobeItems() []api.WardrobeItem {
	if s.wardrobe == nil {
		return []api.WardrobeItem{}
	}
	items := s.wardrobe.Wire()
	if items == nil {
		return []api.WardrobeItem{}
	}
	return items
}

func (s *Session) emitState(state State) {
	if s.onState != nil {
		s.onState(state)
	}
}

func notify(fn UpdateFunc, turns []Turn) {
	if fn != nil {
		fn(turns)
	}
}
