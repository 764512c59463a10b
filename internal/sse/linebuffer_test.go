package sse

import (
	"reflect"
	"testing"
)

const sampleStream = ": keep-alive\r\n" +
	"data: {\"choices\":[{\"delta\":{\"content\":\"Try the \"}}]}\n" +
	"\n" +
	"data: {\"choices\":[{\"delta\":{\"content\":\"silk blouse — ivory.\"}}]}\r\n" +
	"data: [DONE]\n"

func feedAll(b *LineBuffer, chunks [][]byte) []string {
	var out []string
	for _, c := range chunks {
		out = append(out, b.Feed(c)...)
	}
	return out
}

func TestLineBuffer_ChunkingIsTransparent(t *testing.T) {
	whole := NewLineBuffer().Feed([]byte(sampleStream))

	var bytewise [][]byte
	for i := 0; i < len(sampleStream); i++ {
		bytewise = append(bytewise, []byte{sampleStream[i]})
	}
	got := feedAll(NewLineBuffer(), bytewise)

	if !reflect.DeepEqual(got, whole) {
		t.Fatalf("byte-at-a-time lines = %q, want %q", got, whole)
	}
	if len(whole) != 5 {
		t.Fatalf("expected 5 lines, got %d: %q", len(whole), whole)
	}
}

func TestLineBuffer_ArbitrarySplits(t *testing.T) {
	want := NewLineBuffer().Feed([]byte(sampleStream))

	for size := 1; size <= len(sampleStream); size++ {
		var chunks [][]byte
		for i := 0; i < len(sampleStream); i += size {
			end := i + size
			if end > len(sampleStream) {
				end = len(sampleStream)
			}
			chunks = append(chunks, []byte(sampleStream[i:end]))
		}
		got := feedAll(NewLineBuffer(), chunks)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("chunk size %d: lines = %q, want %q", size, got, want)
		}
	}
}

func TestLineBuffer_SplitLineEmittedOnce(t *testing.T) {
	b := NewLineBuffer()
	line := `data: {"choices":[{"delta":{"content":"Hi"}}]}`

	first := b.Feed([]byte(line[:17]))
	if len(first) != 0 {
		t.Fatalf("expected no lines after first half, got %q", first)
	}
	if b.Pending() != 17 {
		t.Errorf("Pending() = %d, want 17", b.Pending())
	}

	second := b.Feed([]byte(line[17:] + "\n"))
	if len(second) != 1 {
		t.Fatalf("expected exactly one line, got %q", second)
	}
	if second[0] != line {
		t.Errorf("line = %q, want %q", second[0], line)
	}
	if b.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", b.Pending())
	}
}

func TestLineBuffer_Feed(t *testing.T) {
	tests := []struct {
		name      string
		chunk     string
		wantLines []string
		wantTail  string
	}{
		{"no newline", "data: partial", nil, "data: partial"},
		{"multiple lines", "a\nb\nc\n", []string{"a", "b", "c"}, ""},
		{"crlf stripped", "a\r\nb\r\n", []string{"a", "b"}, ""},
		{"empty lines kept", "\n\n", []string{"", ""}, ""},
		{"tail kept", "a\nb", []string{"a"}, "b"},
		{"only inner cr kept", "a\rb\n", []string{"a\rb"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewLineBuffer()
			got := b.Feed([]byte(tt.chunk))
			if !reflect.DeepEqual(got, tt.wantLines) {
				t.Errorf("Feed() = %q, want %q", got, tt.wantLines)
			}
			if tail := b.Flush(); tail != tt.wantTail {
				t.Errorf("Flush() = %q, want %q", tail, tt.wantTail)
			}
		})
	}
}

func TestLineBuffer_MultibyteRuneAcrossChunks(t *testing.T) {
	b := NewLineBuffer()
	text := "data: ✨\n"
	raw := []byte(text)

	// Split in the middle of the 3-byte sparkle rune.
	lines := b.Feed(raw[:7])
	lines = append(lines, b.Feed(raw[7:])...)

	if len(lines) != 1 || lines[0] != "data: ✨" {
		t.Fatalf("lines = %q, want [%q]", lines, "data: ✨")
	}
}

func TestLineBuffer_FlushAndReset(t *testing.T) {
	b := NewLineBuffer()
	b.Feed([]byte("data: [DONE]\r"))
	if got := b.Flush(); got != "data: [DONE]" {
		t.Errorf("Flush() = %q, want %q", got, "data: [DONE]")
	}
	if got := b.Flush(); got != "" {
		t.Errorf("second Flush() = %q, want empty", got)
	}

	b.Feed([]byte("leftover"))
	b.Reset()
	if b.Pending() != 0 {
		t.Errorf("Pending() after Reset = %d, want 0", b.Pending())
	}
	if got := b.Feed(nil); got != nil {
		t.Errorf("Feed(nil) = %q, want nil", got)
	}
}
