package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

type contextKey string

const userIDKey contextKey = "user_id"

// UserIDFromContext は context から userID を取得する
func UserIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok
}

// WithUserID は context に userID をセットする
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Config holds the secrets used to verify credentials.
// JWTSecret may be empty, in which case bearer tokens are rejected.
// SessionSecret may be empty, in which case session cookies are neither
// accepted nor issued.
type Config struct {
	SessionSecret []byte
	JWTSecret     []byte
	// SessionTTL caps the lifetime of issued cookies (DefaultSessionTTL when 0).
	SessionTTL   time.Duration
	SecureCookie bool
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (c Config) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

var errNoCredentials = errors.New("no credentials")

func withSession(ctx context.Context, s Session) context.Context {
	ctx = WithUserID(ctx, s.UserID)
	if s.Host {
		ctx = WithIsHost(ctx, true)
	}
	return ctx
}

// authenticate は Authorization: Bearer、次にセッションクッキーを検証する。
// 片方が無効でももう片方が有効なら認証は成功する。
// アクセストークンで認証し、同じユーザーの有効なクッキーがない場合は
// 発行すべきセッションを返す。
func authenticate(r *http.Request, cfg Config) (context.Context, *Session, error) {
	ctx := r.Context()
	now := cfg.now()

	var cookieSession *Session
	var cookieErr error
	if cookie, err := r.Cookie(sessionCookieName); err == nil && len(cfg.SessionSecret) > 0 {
		cookieSession, cookieErr = VerifySessionToken(cookie.Value, cfg.SessionSecret, now)
	}

	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && token != "" {
		claims, err := VerifyAccessToken(token, cfg.JWTSecret)
		if err == nil {
			s := sessionFromClaims(claims, cfg.SessionTTL, now)
			ctx = withSession(ctx, s)
			if cookieSession != nil && cookieSession.UserID == s.UserID {
				return ctx, nil, nil
			}
			return ctx, &s, nil
		}
		if cookieSession == nil {
			return ctx, nil, err
		}
	}

	if cookieSession != nil {
		return withSession(ctx, *cookieSession), nil, nil
	}
	if cookieErr != nil {
		return ctx, nil, cookieErr
	}
	return ctx, nil, errNoCredentials
}

// issueSession sets the session cookie so later requests authenticate without
// resending the bearer token.
func issueSession(w http.ResponseWriter, s *Session, cfg Config) {
	if s == nil || len(cfg.SessionSecret) == 0 {
		return
	}
	http.SetCookie(w, sessionCookie(*s, cfg))
}

// RequireAuth は認証必須ミドルウェア。アクセストークンまたはセッションを検証し、userID を context にセットする
func RequireAuth(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, issue, err := authenticate(r, cfg)
			if err != nil {
				code := "invalid_session"
				if errors.Is(err, errNoCredentials) {
					code = "unauthorized"
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
				return
			}
			issueSession(w, issue, cfg)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth sets the userID when valid credentials are present and passes
// the request through unchanged otherwise.
func OptionalAuth(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, issue, err := authenticate(r, cfg)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			issueSession(w, issue, cfg)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DevUserID は開発用のダミー userID（AUTH_REQUIRED=false 時に使用）
const DevUserID = "dev-user-id"

// DevAuth は開発用ミドルウェア。ダミー userID を context にセットする
func DevAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithUserID(r.Context(), DevUserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
