package main

import (
	"log/slog"
	"net/http"
)

// NewRouter registers all routes and wraps them with the middleware chain.
func NewRouter(h *PaletteHandler, cfg Config, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check, no auth (JWTAuth skips /healthz)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// GET reads palettes, POST applies an op batch; other methods get 405
	// from the handler itself.
	mux.Handle("/api/v1/palettes", h)

	// Outermost first: Recovery, RequestID, CORS, RequestLogging, JWTAuth.
	var handler http.Handler = mux
	handler = JWTAuth(cfg.JWTSecret, cfg.JWTIssuer, cfg.DevBypassAuth)(handler)
	handler = RequestLogging(logger)(handler)
	handler = CORS(cfg.CORSAllowOrigin)(handler)
	handler = RequestID()(handler)
	handler = Recovery(logger)(handler)

	return handler
}
