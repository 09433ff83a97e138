package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
)

// maxBodyBytes bounds POST bodies read by the HTTP adapter.
const maxBodyBytes = 1 << 20

// Request is the platform-neutral request envelope. UserID has already been
// resolved by the adapter.
type Request struct {
	HTTPMethod string
	Path       string
	Body       string
	UserID     string
}

// Response is the platform-neutral response envelope.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

// PaletteHandler serves palette reads and operation batches.
type PaletteHandler struct {
	store     Store
	processor *Processor
	logger    *slog.Logger
}

// NewPaletteHandler creates a new handler with the given store and logger.
func NewPaletteHandler(store Store, logger *slog.Logger) *PaletteHandler {
	return &PaletteHandler{
		store:     store,
		processor: NewProcessor(store, logger),
		logger:    logger,
	}
}

// Handle dispatches on the request method: GET reads palettes, POST applies
// an operation batch, anything else is 405.
func (h *PaletteHandler) Handle(ctx context.Context, req Request) Response {
	switch req.HTTPMethod {
	case http.MethodGet:
		return h.getPalettes(ctx, req.UserID)
	case http.MethodPost:
		return h.postOps(ctx, req.UserID, req.Body)
	default:
		return Response{StatusCode: http.StatusMethodNotAllowed}
	}
}

func (h *PaletteHandler) getPalettes(ctx context.Context, userID string) Response {
	palettes, err := h.store.GetPalettes(ctx, userID)
	if err != nil {
		h.logger.Error("store.GetPalettes failed", "error", err, "userId", userID, "requestId", RequestIDFromContext(ctx))
		return Response{StatusCode: http.StatusInternalServerError, Body: err.Error()}
	}

	if palettes == nil {
		palettes = []Palette{}
	}

	body, err := json.Marshal(palettes)
	if err != nil {
		return Response{StatusCode: http.StatusInternalServerError, Body: err.Error()}
	}

	return Response{StatusCode: http.StatusOK, Headers: map[string]string{}, Body: string(body)}
}

func (h *PaletteHandler) postOps(ctx context.Context, userID string, body string) Response {
	if body == "" {
		return Response{StatusCode: http.StatusBadRequest}
	}

	var in OpsRequest
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		h.logger.Debug("invalid JSON body", "error", err, "userId", userID)
		return Response{StatusCode: http.StatusBadRequest}
	}
	if in.Ops == nil {
		return Response{StatusCode: http.StatusBadRequest}
	}

	ops, err := ValidateOps(in.Ops)
	if err != nil {
		h.logger.Debug("ops rejected", "error", err, "userId", userID)
		return Response{StatusCode: http.StatusBadRequest, Body: err.Error()}
	}

	results, err := h.processor.Process(ctx, userID, ops)
	if err != nil {
		h.logger.Error("processor.Process failed", "error", err, "userId", userID, "requestId", RequestIDFromContext(ctx))
		return Response{StatusCode: http.StatusInternalServerError, Body: err.Error()}
	}

	out, err := json.Marshal(OpsResponse{Results: results})
	if err != nil {
		return Response{StatusCode: http.StatusInternalServerError, Body: err.Error()}
	}

	return Response{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(out),
	}
}

// ServeHTTP adapts net/http to Handle. The user is the JWT subject.
func (h *PaletteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing claims")
		return
	}

	var body string
	if r.Method == http.MethodPost && r.Body != nil {
		b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				return
			}
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		body = string(b)
	}

	resp := h.Handle(r.Context(), Request{
		HTTPMethod: r.Method,
		Path:       r.URL.Path,
		Body:       body,
		UserID:     claims.Subject,
	})
	if r.Method == http.MethodGet && resp.StatusCode == http.StatusOK {
		w.Header().Set("Content-Type", "application/json")
	}
	writeResponse(w, resp)
}
