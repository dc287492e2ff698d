package handler

import (
	"encoding/json"
	"net/http"

	"github.com/campusswap/backend/internal/repository"
)

// Handler holds the dependencies shared by the API's plain handlers.
type Handler struct {
	store       repository.DB
	storeKind   string
	frontendURL string
}

// New creates a Handler. storeKind names the contact store backend for /api/health.
func New(store repository.DB, storeKind, frontendURL string) *Handler {
	return &Handler{store: store, storeKind: storeKind, frontendURL: frontendURL}
}

// CORS allows the marketplace front end to call the API with credentials.
// Retry-After is exposed so the front end can read it on debounced clicks.
func (h *Handler) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hdr := w.Header()
		hdr.Set("Access-Control-Allow-Origin", h.frontendURL)
		hdr.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		hdr.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		hdr.Set("Access-Control-Allow-Credentials", "true")
		hdr.Set("Access-Control-Expose-Headers", "Retry-After")
		hdr.Add("Vary", "Origin")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON writes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
