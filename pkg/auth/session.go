package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

const sessionCookieName = "campusswap_session"
const minSecretLen = 32

// DefaultSessionTTL は Config.SessionTTL 未設定時のセッション有効期間
const DefaultSessionTTL = 12 * time.Hour

// ErrSessionExpired is returned for a correctly signed session past its expiry.
var ErrSessionExpired = errors.New("session expired")

// Session はアクセストークン検証後に発行するセッションクッキーの中身
type Session struct {
	UserID    string
	Host      bool
	ExpiresAt time.Time
}

type sessionPayload struct {
	UserID    string `json:"uid"`
	Host      bool   `json:"host,omitempty"`
	ExpiresAt int64  `json:"exp"`
}

// CreateSessionToken はセッションから署名付きトークンを生成する
func CreateSessionToken(s Session, secret []byte) string {
	payload, _ := json.Marshal(sessionPayload{
		UserID:    s.UserID,
		Host:      s.Host,
		ExpiresAt: s.ExpiresAt.Unix(),
	})
	return base64.RawURLEncoding.EncodeToString(payload) + "." + sign(payload, secret)
}

// VerifySessionToken はトークンの署名と有効期限を検証する
func VerifySessionToken(token string, secret []byte, now time.Time) (*Session, error) {
	encoded, sig, ok := strings.Cut(token, ".")
	if !ok {
		return nil, errors.New("invalid token format")
	}
	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	if !hmac.Equal([]byte(sign(payload, secret)), []byte(sig)) {
		return nil, errors.New("invalid signature")
	}

	var p sessionPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, errors.New("invalid token payload")
	}
	if p.UserID == "" {
		return nil, errors.New("session has no user")
	}
	expiresAt := time.Unix(p.ExpiresAt, 0)
	if !now.Before(expiresAt) {
		return nil, ErrSessionExpired
	}
	return &Session{UserID: p.UserID, Host: p.Host, ExpiresAt: expiresAt}, nil
}

func sign(payload, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// sessionFromClaims は検証済みアクセストークンからセッションを作る。
// 有効期限はトークンの exp を超えない。
func sessionFromClaims(claims *AccessClaims, ttl time.Duration, now time.Time) Session {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	expiresAt := now.Add(ttl)
	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(expiresAt) {
		expiresAt = claims.ExpiresAt.Time
	}
	return Session{
		UserID:    claims.Subject,
		Host:      claims.Role == AdminRole,
		ExpiresAt: expiresAt,
	}
}

// sessionCookie builds the Set-Cookie value for s.
func sessionCookie(s Session, cfg Config) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    CreateSessionToken(s, cfg.SessionSecret),
		Path:     "/api",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

// SessionCookieName はセッションクッキー名
func SessionCookieName() string {
	return sessionCookieName
}

// SessionSecretBytes は文字列からセッション署名用のバイト列を生成する（最低32バイト）
func SessionSecretBytes(s string) []byte {
	b := []byte(s)
	if len(b) < minSecretLen {
		out := make([]byte, minSecretLen)
		copy(out, b)
		return out
	}
	return b
}
