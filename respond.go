package main

import (
	"encoding/json"
	"io"
	"net/http"
)

// APIError is the JSON body for errors raised outside the palette envelope,
// such as authentication failures.
type APIError struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIError{Error: msg, Code: status})
}

// writeResponse writes an envelope Response. Bodies default to plain text.
func writeResponse(w http.ResponseWriter, resp Response) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	if resp.Body != "" && w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		io.WriteString(w, resp.Body)
	}
}
