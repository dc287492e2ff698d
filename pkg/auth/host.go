package auth

import (
	"context"
	"net/http"
	"strings"
)

const isHostKey contextKey = "is_host"

// WithIsHost stores the host flag in the context.
func WithIsHost(ctx context.Context, isHost bool) context.Context {
	return context.WithValue(ctx, isHostKey, isHost)
}

// IsHostFromContext returns whether the authenticated user is a host.
// Returns false when not set.
func IsHostFromContext(ctx context.Context) bool {
	v, _ := ctx.Value(isHostKey).(bool)
	return v
}

// ParseHostUserIDs splits a comma-separated HOST_USER_IDS value.
func ParseHostUserIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// HostMiddleware marks the request as host when the authenticated userID is
// listed in hostUserIDs. A host flag already set (e.g. by an admin role claim)
// is kept.
func HostMiddleware(hostUserIDs []string) func(http.Handler) http.Handler {
	set := make(map[string]bool, len(hostUserIDs))
	for _, id := range hostUserIDs {
		set[id] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsHostFromContext(r.Context()) {
				next.ServeHTTP(w, r)
				return
			}
			userID, ok := UserIDFromContext(r.Context())
			if ok && set[userID] {
				r = r.WithContext(WithIsHost(r.Context(), true))
			}
			next.ServeHTTP(w, r)
		})
	}
}
