package stream

import "testing"

func chunk(content string) string {
	return `{"choices":[{"delta":{"content":"` + content + `"}}]}`
}

func TestAccumulator_ConcatenatesDeltas(t *testing.T) {
	acc := NewAccumulator()

	for _, part := range []string{"Hi", " there", "!"} {
		fragment, ok := acc.Apply(chunk(part))
		if !ok {
			t.Fatalf("Apply(%q) not ok", part)
		}
		if fragment != part {
			t.Errorf("fragment = %q, want %q", fragment, part)
		}
	}

	if acc.Text() != "Hi there!" {
		t.Errorf("Text() = %q, want %q", acc.Text(), "Hi there!")
	}
	if acc.Dropped() != 0 {
		t.Errorf("Dropped() = %d, want 0", acc.Dropped())
	}
}

func TestAccumulator_PayloadsWithoutContent(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"role only", `{"choices":[{"delta":{"role":"assistant"}}]}`},
		{"empty content", `{"choices":[{"delta":{"content":""}}]}`},
		{"null content", `{"choices":[{"delta":{"content":null}}]}`},
		{"numeric content", `{"choices":[{"delta":{"content":42}}]}`},
		{"no choices", `{"usage":{"total_tokens":12}}`},
		{"empty choices", `{"choices":[]}`},
		{"scalar json", `"hello"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := NewAccumulator()
			fragment, ok := acc.Apply(tt.payload)
			if !ok {
				t.Error("valid JSON should be consumed")
			}
			if fragment != "" || acc.Text() != "" {
				t.Errorf("fragment = %q, text = %q, want empty", fragment, acc.Text())
			}
		})
	}
}

func TestAccumulator_SplitPayloadJoinedOnce(t *testing.T) {
	acc := NewAccumulator()
	full := chunk("silk blouse")
	first, second := full[:20], full[20:]

	if _, ok := acc.Apply(first); ok {
		t.Fatal("first half should not decode")
	}
	if !acc.Holding() {
		t.Fatal("first half should be held")
	}

	fragment, ok := acc.Apply(second)
	if !ok {
		t.Fatal("joined payload should decode")
	}
	if fragment != "silk blouse" {
		t.Errorf("fragment = %q, want %q", fragment, "silk blouse")
	}
	if acc.Text() != "silk blouse" {
		t.Errorf("Text() = %q, want %q", acc.Text(), "silk blouse")
	}
	if acc.Holding() {
		t.Error("nothing should be held after a successful join")
	}

	// A following record is counted once, not re-applied with the fragment.
	acc.Apply(chunk("!"))
	if acc.Text() != "silk blouse!" {
		t.Errorf("Text() = %q, want %q", acc.Text(), "silk blouse!")
	}
}

func TestAccumulator_PermanentlyMalformed(t *testing.T) {
	acc := NewAccumulator()

	acc.Apply(`{"choices":[{"delta":`)
	fragment, ok := acc.Apply(chunk("Hello"))
	if !ok || fragment != "Hello" {
		t.Fatalf("valid payload after garbage: fragment = %q ok = %v", fragment, ok)
	}
	if acc.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", acc.Dropped())
	}
	if acc.Text() != "Hello" {
		t.Errorf("Text() = %q, want %q", acc.Text(), "Hello")
	}
}

func TestAccumulator_TwoBrokenPayloads(t *testing.T) {
	acc := NewAccumulator()

	acc.Apply("not json")
	if _, ok := acc.Apply("{still not"); ok {
		t.Fatal("second broken payload should not decode")
	}
	if acc.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", acc.Dropped())
	}
	if !acc.Holding() {
		t.Error("second broken payload should be held for one retry")
	}

	if !acc.Discard() {
		t.Error("Discard() should report a dropped fragment")
	}
	if acc.Discard() {
		t.Error("second Discard() should be a no-op")
	}
	if acc.Dropped() != 2 {
		t.Errorf("Dropped() = %d, want 2", acc.Dropped())
	}
}

func TestAccumulator_EmptyPayload(t *testing.T) {
	acc := NewAccumulator()
	if _, ok := acc.Apply(""); ok {
		t.Error("empty payload should not decode")
	}
	if acc.Holding() {
		t.Error("empty payload should not be held")
	}
	if acc.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", acc.Dropped())
	}
}

func TestAccumulator_Reset(t *testing.T) {
	acc := NewAccumulator()
	acc.Apply(chunk("x"))
	acc.Apply("{")
	acc.Reset()

	if acc.Text() != "" || acc.Holding() || acc.Dropped() != 0 {
		t.Errorf("Reset left state: text=%q holding=%v dropped=%d", acc.Text(), acc.Holding(), acc.Dropped())
	}
}
