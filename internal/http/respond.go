package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// msgResponse is the wire shape for status and error messages.
type msgResponse struct {
	Msg string `json:"msg"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondMsg(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, msgResponse{Msg: msg})
}

// decodeJSON fills dst from the request body. A false return means the
// response has already been written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondMsg(w, http.StatusBadRequest, "Invalid input data")
		return false
	}
	return true
}
