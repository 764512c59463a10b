// Package sse splits a chunked text/event-stream body into lines and
// classifies each line as an event record.
package sse

import "bytes"

// LineBuffer accumulates raw chunks and emits complete newline-delimited
// lines. Bytes after the last newline are kept until a later chunk
// terminates them.
type LineBuffer struct {
	pending []byte
}

// NewLineBuffer creates an empty LineBuffer
func NewLineBuffer() *LineBuffer {
	return &LineBuffer{pending: make([]byte, 0, 4096)}
}

// Feed appends chunk to the remainder and returns every line completed by it,
// in arrival order. A trailing "\r" is stripped from each line.
func (b *LineBuffer) Feed(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}
	b.pending = append(b.pending, chunk...)

	var lines []string
	start := 0
	for {
		idx := bytes.IndexByte(b.pending[start:], '\n')
		if idx < 0 {
			break
		}
		end := start + idx
		lines = append(lines, string(trimCR(b.pending[start:end])))
		start = end + 1
	}

	if start > 0 {
		// Shift the tail down so the backing array does not grow without bound.
		n := copy(b.pending, b.pending[start:])
		b.pending = b.pending[:n]
	}
	return lines
}

// Flush returns the unterminated remainder and clears the buffer.
func (b *LineBuffer) Flush() string {
	if len(b.pending) == 0 {
		return ""
	}
	line := string(trimCR(b.pending))
	b.pending = b.pending[:0]
	return line
}

// Pending returns the number of buffered bytes not yet forming a line
func (b *LineBuffer) Pending() int {
	return len(b.pending)
}

// Reset discards the remainder
func (b *LineBuffer) Reset() {
	b.pending = b.pending[:0]
}

func trimCR(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\r' {
		return line[:n-1]
	}
	return line
}
