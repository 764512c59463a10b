package stream

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/diogo/vestry/internal/sse"
)

// DefaultChunkSize is the read size used when none is configured
const DefaultChunkSize = 4096

// Delta is reported to the caller after every text increment
type Delta struct {
	Fragment string // text added by this record
	Text     string // everything accumulated so far
}

// Result summarises a finished stream
type Result struct {
	Text       string
	Terminated bool // the [DONE] sentinel was seen
	Lines      int
	Deltas     int
	Skipped    int // malformed lines
	Dropped    int // payloads that never decoded
}

// Assembler runs the read loop: chunks → lines → records → deltas.
// An Assembler handles one stream at a time and is not safe for concurrent use.
type Assembler struct {
	chunkSize int
	logger    *log.Logger
}

// Option configures an Assembler
type Option func(*Assembler)

// WithChunkSize sets how many bytes are requested per read
func WithChunkSize(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.chunkSize = n
		}
	}
}

// WithLogger sets the logger used for skipped lines and dropped payloads
func WithLogger(logger *log.Logger) Option {
	return func(a *Assembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAssembler creates an Assembler
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		chunkSize: DefaultChunkSize,
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run reads body until it ends, the [DONE] sentinel arrives, or ctx is
// cancelled. onDelta is called after each non-empty fragment and never after
// ctx is done. A read error other than io.EOF is returned with the partial
// result.
func (a *Assembler) Run(ctx context.Context, body io.Reader, onDelta func(Delta)) (Result, error) {
	state := &runState{
		ctx:     ctx,
		lines:   sse.NewLineBuffer(),
		acc:     NewAccumulator(),
		onDelta: onDelta,
		logger:  a.logger,
	}

	buf := make([]byte, a.chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return state.result(), err
		}

		n, readErr := body.Read(buf)
		if n > 0 {
			for _, line := range state.lines.Feed(buf[:n]) {
				if err := state.handle(line); err != nil {
					return state.result(), err
				}
				if state.terminated {
					state.acc.Discard()
					state.lines.Reset()
					return state.result(), nil
				}
			}
		}

		if readErr == nil {
			continue
		}
		if !errors.Is(readErr, io.EOF) {
			if err := ctx.Err(); err != nil {
				return state.result(), err
			}
			return state.result(), fmt.Errorf("read stream: %w", readErr)
		}

		// Best effort for a body that ends without a trailing newline.
		if tail := state.lines.Flush(); tail != "" {
			if err := state.handle(tail); err != nil {
				return state.result(), err
			}
		}
		if state.acc.Discard() {
			a.logger.Debug("dropped incomplete payload at end of stream")
		}
		return state.result(), nil
	}
}

type runState struct {
	ctx        context.Context
	lines      *sse.LineBuffer
	acc        *Accumulator
	onDelta    func(Delta)
	logger     *log.Logger
	terminated bool
	lineCount  int
	deltas     int
	skipped    int
}

func (s *runState) handle(line string) error {
	s.lineCount++
	rec := sse.Classify(line)

	switch rec.Kind {
	case sse.KindTerminator:
		s.terminated = true
		return nil
	case sse.KindMalformed:
		s.skipped++
		s.logger.Debug("skipping unrecognised line", "line", line)
		return nil
	case sse.KindData:
	default:
		return nil
	}

	before := s.acc.Dropped()
	fragment, ok := s.acc.Apply(rec.Payload)
	if s.acc.Dropped() > before {
		s.logger.Debug("dropped malformed payload", "payload", rec.Payload)
	}
	if !ok || fragment == "" {
		return nil
	}

	if err := s.ctx.Err(); err != nil {
		return err
	}
	s.deltas++
	if s.onDelta != nil {
		s.onDelta(Delta{Fragment: fragment, Text: s.acc.Text()})
	}
	return nil
}

func (s *runState) result() Result {
	return Result{
		Text:       s.acc.Text(),
		Terminated: s.terminated,
		Lines:      s.lineCount,
		Deltas:     s.deltas,
		Skipped:    s.skipped,
		Dropped:    s.acc.Dropped(),
	}
}
