package sse

import "strings"

// Wire markers of the event stream
const (
	DataPrefix    = "data: "
	CommentPrefix = ":"
	DoneToken     = "[DONE]"
)

// Kind classifies a single line of the stream
type Kind int

const (
	KindEmpty Kind = iota
	KindComment
	KindMalformed
	KindData
	KindTerminator
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindComment:
		return "comment"
	case KindMalformed:
		return "malformed"
	case KindData:
		return "data"
	case KindTerminator:
		return "terminator"
	default:
		return "unknown"
	}
}

// Record is the classification of one line. Payload is set only for KindData.
type Record struct {
	Kind    Kind
	Payload string
}

// Ignored reports whether the record carries nothing for the caller
func (r Record) Ignored() bool {
	return r.Kind != KindData && r.Kind != KindTerminator
}

// Classify interprets a complete line. Rules apply in order: blank lines,
// comments, lines without the data prefix, then data lines whose trimmed
// payload is either the terminator token or a payload.
func Classify(line string) Record {
	if strings.TrimSpace(line) == "" {
		return Record{Kind: KindEmpty}
	}
	if strings.HasPrefix(line, CommentPrefix) {
		return Record{Kind: KindComment}
	}
	if !strings.HasPrefix(line, DataPrefix) {
		return Record{Kind: KindMalformed}
	}

	payload := strings.TrimSpace(line[len(DataPrefix):])
	if payload == DoneToken {
		return Record{Kind: KindTerminator}
	}
	return Record{Kind: KindData, Payload: payload}
}
