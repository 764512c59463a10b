// Package stream assembles a streamed chat-completion reply from the
// relay's event stream.
package stream

import (
	"strings"

	"github.com/tidwall/gjson"
)

// DeltaPath is the gjson path of the text fragment inside one chunk
const DeltaPath = "choices.0.delta.content"

// Accumulator decodes data payloads and concatenates their text deltas.
//
// A payload that is not valid JSON is held back: the next payload is appended
// to it and the combination is tried once more, because a record can be split
// even after line splitting. A held fragment that still fails is dropped.
type Accumulator struct {
	text    strings.Builder
	pending string
	held    bool
	dropped int
}

// NewAccumulator creates an empty Accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Apply consumes one data payload. It returns the fragment appended to the
// running text and ok=true when the payload (possibly joined with a held
// fragment) decoded. ok=false means the payload was held or skipped.
func (a *Accumulator) Apply(payload string) (string, bool) {
	if !a.held {
		if payload == "" {
			a.dropped++
			return "", false
		}
		if gjson.Valid(payload) {
			return a.consume(payload), true
		}
		a.hold(payload)
		return "", false
	}

	joined := a.pending + payload
	a.release()
	if gjson.Valid(joined) {
		return a.consume(joined), true
	}

	// The held fragment never completed.
	a.dropped++
	if payload == "" {
		a.dropped++
		return "", false
	}
	if gjson.Valid(payload) {
		return a.consume(payload), true
	}
	a.hold(payload)
	return "", false
}

// Discard drops a held fragment, if any. Called when the stream terminates.
func (a *Accumulator) Discard() bool {
	if !a.held {
		return false
	}
	a.release()
	a.dropped++
	return true
}

// Text returns everything accumulated so far
func (a *Accumulator) Text() string {
	return a.text.String()
}

// Holding reports whether a fragment is waiting for more input
func (a *Accumulator) Holding() bool {
	return a.held
}

// Dropped returns how many payloads were skipped as permanently malformed
func (a *Accumulator) Dropped() int {
	return a.dropped
}

// Reset clears the running text and any held fragment
func (a *Accumulator) Reset() {
	a.text.Reset()
	a.release()
	a.dropped = 0
}

func (a *Accumulator) consume(payload string) string {
	content := gjson.Get(payload, DeltaPath)
	if content.Type != gjson.String || content.Str == "" {
		return ""
	}
	a.text.WriteString(content.Str)
	return content.Str
}

func (a *Accumulator) hold(payload string) {
	a.pending = payload
	a.held = true
}

func (a *Accumulator) release() {
	a.pending = ""
	a.held = false
}
