package handler

import "net/http"

// RouteConfig supplies the middleware wrapped around each API route.
// Nil fields pass requests through unchanged.
type RouteConfig struct {
	Limiter *RateLimiter
	// OptionalAuth resolves identity when present; contact initiation must
	// reach the service without credentials to answer "please log in".
	OptionalAuth func(http.Handler) http.Handler
	RequireAuth  func(http.Handler) http.Handler
	HostOnly     func(http.Handler) http.Handler
}

func passThrough(next http.Handler) http.Handler { return next }

func orPass(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw == nil {
		return passThrough
	}
	return mw
}

// Routes builds the API handler: request logging, security headers and CORS
// around the contact and health routes.
func (h *Handler) Routes(contact *ContactHandler, cfg RouteConfig) http.Handler {
	optional := orPass(cfg.OptionalAuth)
	required := orPass(cfg.RequireAuth)
	hostOnly := orPass(cfg.HostOnly)
	limit := passThrough
	if cfg.Limiter != nil {
		limit = cfg.Limiter.Middleware
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", h.Health)
	mux.Handle("POST /api/contact/initiate", limit(optional(http.HandlerFunc(contact.Initiate))))
	mux.Handle("GET /api/contact/status", required(http.HandlerFunc(contact.Status)))

	// host only; AdminReset also checks IsHostFromContext
	mux.Handle("POST /api/admin/contact/reset", required(hostOnly(http.HandlerFunc(contact.AdminReset))))

	return RequestLogger(SecurityHeaders(h.CORS(mux)))
}
