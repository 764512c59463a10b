package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/diogo/vestry/internal/api"
	apierrors "github.com/diogo/vestry/internal/errors"
)

// AllowHeaders is the CORS header allow-list sent on every response
const AllowHeaders = "authorization, x-client-info, apikey, content-type, x-supabase-client-platform, x-supabase-client-platform-version, x-supabase-client-runtime, x-supabase-client-runtime-version"

// maxRequestBody bounds the accepted request body
const maxRequestBody = 1 << 20

// Upstream opens a streamed completion for a chat request. *Gateway implements it.
type Upstream interface {
	Open(ctx context.Context, req *api.ChatRequest) (io.ReadCloser, error)
}

// Handler serves the outfit-chat endpoint
type Handler struct {
	upstream   Upstream
	logger     *log.Logger
	bufferSize int
}

// NewHandler creates a Handler forwarding to upstream
func NewHandler(upstream Upstream, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Handler{
		upstream:   upstream,
		logger:     logger,
		bufferSize: 4096,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := uuid.NewString()
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", AllowHeaders)
	w.Header().Set("X-Request-Id", requestID)

	logger := h.logger.With("request_id", requestID)
	status := h.serve(w, r, logger)
	logger.Info("outfit-chat", "method", r.Method, "status", status, "duration", time.Since(start).Round(time.Millisecond))
}

// serve handles one request and returns the status written
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, logger *log.Logger) int {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return http.StatusOK
	case http.MethodPost:
	default:
		w.Header().Set("Allow", "POST, OPTIONS")
		return writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}

	var req api.ChatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req); err != nil {
		logger.Error("outfit-chat error", "error", apierrors.NewParseError("request body: "+err.Error(), ""))
		return writeError(w, http.StatusBadRequest, "Invalid request body")
	}

	body, err := h.upstream.Open(r.Context(), &req)
	if err != nil {
		return h.upstreamError(w, err, logger)
	}
	defer body.Close()

	w.Header().Set("Content-Type", api.ContentTypeEventStream)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	buf := make([]byte, h.bufferSize)
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				logger.Debug("client went away", "error", err)
				return http.StatusOK
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if readErr != nil {
			if !errors.Is(readErr, io.EOF) && r.Context().Err() == nil {
				logger.Warn("upstream stream ended early", "error", readErr)
			}
			return http.StatusOK
		}
	}
}

// upstreamError maps a gateway failure onto the relay's JSON error contract
func (h *Handler) upstreamError(w http.ResponseWriter, err error, logger *log.Logger) int {
	if errors.Is(err, ErrMissingKey) {
		logger.Error("outfit-chat error", "error", err)
		return writeError(w, http.StatusInternalServerError, err.Error())
	}

	switch apierrors.GetHTTPStatus(err) {
	case http.StatusTooManyRequests:
		return writeError(w, http.StatusTooManyRequests, apierrors.RateLimitMessage)
	case http.StatusPaymentRequired:
		return writeError(w, http.StatusPaymentRequired, apierrors.UsageLimitMessage)
	}

	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		logger.Error("AI gateway error", "status", apiErr.StatusCode, "body", apiErr.Body)
	} else {
		logger.Error("AI gateway error", "error", err)
	}
	return writeError(w, http.StatusInternalServerError, apierrors.UnavailableMessage)
}

func writeError(w http.ResponseWriter, status int, message string) int {
	w.Header().Set("Content-Type", api.ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
	return status
}
