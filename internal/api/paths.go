// Package api provides the client for the outfit-chat relay endpoint.
package api

// Relay wire details
const (
	// PathError is the gjson path of the message in a relay error body: {"error": "..."}
	PathError = "error"

	// ContentTypeEventStream is the media type of a successful streamed reply
	ContentTypeEventStream = "text/event-stream"

	// ContentTypeJSON is the media type of requests and error bodies
	ContentTypeJSON = "application/json"

	// maxErrorBody caps how much of a failed response is read for diagnostics
	maxErrorBody = 4096
)
