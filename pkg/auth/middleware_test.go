package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		SessionSecret: SessionSecretBytes("dev-secret-change-in-production-32bytes"),
		JWTSecret:     []byte("hosted-auth-jwt-secret"),
	}
}

func TestRequireAuth_NoCookie_Returns401(t *testing.T) {
	mw := RequireAuth(testConfig())

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called")
	})

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuth_InvalidToken_Returns401(t *testing.T) {
	mw := RequireAuth(testConfig())

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called")
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName(), Value: "invalid.token"})
	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuth_ValidToken_CallsNextWithUserID(t *testing.T) {
	cfg := testConfig()
	token := CreateSessionToken(Session{UserID: "user-123", ExpiresAt: time.Now().Add(time.Hour)}, cfg.SessionSecret)
	mw := RequireAuth(cfg)

	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName(), Value: token})
	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if gotUserID != "user-123" {
		t.Errorf("expected userID=user-123, got %q", gotUserID)
	}
}

func TestRequireAuth_BearerToken_CallsNextWithUserID(t *testing.T) {
	cfg := testConfig()
	token := signAccessToken(t, cfg.JWTSecret, "user-456", "", time.Hour)
	mw := RequireAuth(cfg)

	var gotUserID string
	var gotHost bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = UserIDFromContext(r.Context())
		gotHost = IsHostFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if gotUserID != "user-456" {
		t.Errorf("expected userID=user-456, got %q", gotUserID)
	}
	if gotHost {
		t.Error("expected non-admin token not to set host flag")
	}
}

func TestRequireAuth_AdminBearerToken_SetsHost(t *testing.T) {
	cfg := testConfig()
	token := signAccessToken(t, cfg.JWTSecret, "admin-1", AdminRole, time.Hour)

	var gotHost bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHost = IsHostFromContext(r.Context())
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	RequireAuth(cfg)(next).ServeHTTP(httptest.NewRecorder(), req)

	if !gotHost {
		t.Error("expected admin role claim to set host flag")
	}
}

func TestRequireAuth_ExpiredCookie_Returns401(t *testing.T) {
	cfg := testConfig()
	token := CreateSessionToken(Session{UserID: "user-123", ExpiresAt: time.Now().Add(-time.Minute)}, cfg.SessionSecret)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called")
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName(), Value: token})
	rec := httptest.NewRecorder()
	RequireAuth(cfg)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid_session") {
		t.Errorf("expected invalid_session error, got %s", rec.Body.String())
	}
}

// --- session cookie issued from bearer tokens ---

func sessionCookieFrom(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName() {
			return c
		}
	}
	return nil
}

func TestRequireAuth_BearerToken_IssuesSessionCookie(t *testing.T) {
	cfg := testConfig()
	token := signAccessToken(t, cfg.JWTSecret, "admin-1", AdminRole, time.Hour)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	RequireAuth(cfg)(next).ServeHTTP(rec, req)

	cookie := sessionCookieFrom(rec)
	if cookie == nil {
		t.Fatal("expected session cookie to be issued")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	// the cookie alone authenticates the next request and keeps the host flag
	var gotUserID string
	var gotHost bool
	next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = UserIDFromContext(r.Context())
		gotHost = IsHostFromContext(r.Context())
	})
	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	rec = httptest.NewRecorder()
	RequireAuth(cfg)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotUserID != "admin-1" || !gotHost {
		t.Errorf("expected admin-1 as host, got %q host=%v", gotUserID, gotHost)
	}
	if sessionCookieFrom(rec) != nil {
		t.Error("cookie-only request should not reissue the cookie")
	}
}

func TestRequireAuth_BearerWithMatchingCookie_DoesNotReissue(t *testing.T) {
	cfg := testConfig()
	token := signAccessToken(t, cfg.JWTSecret, "user-1", "", time.Hour)
	session := CreateSessionToken(Session{UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)}, cfg.SessionSecret)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.AddCookie(&http.Cookie{Name: SessionCookieName(), Value: session})
	rec := httptest.NewRecorder()
	RequireAuth(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

	if sessionCookieFrom(rec) != nil {
		t.Error("valid cookie for the same user should not be reissued")
	}
}

func TestRequireAuth_NoSessionSecret_DoesNotIssueCookie(t *testing.T) {
	cfg := testConfig()
	cfg.SessionSecret = nil
	token := signAccessToken(t, cfg.JWTSecret, "user-1", "", time.Hour)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	RequireAuth(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if sessionCookieFrom(rec) != nil {
		t.Error("cookie must not be issued without a session secret")
	}
}

func TestOptionalAuth_StaleCookie_FallsBackToBearer(t *testing.T) {
	cfg := testConfig()
	token := signAccessToken(t, cfg.JWTSecret, "user-456", "", time.Hour)

	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = UserIDFromContext(r.Context())
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName(), Value: "stale.cookie"})
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	OptionalAuth(cfg)(next).ServeHTTP(rec, req)

	if gotUserID != "user-456" {
		t.Errorf("expected bearer identity user-456, got %q", gotUserID)
	}
	if sessionCookieFrom(rec) == nil {
		t.Error("expected the stale cookie to be replaced")
	}
}

func TestOptionalAuth_InvalidBearer_ValidCookieStillAuthenticates(t *testing.T) {
	cfg := testConfig()
	session := CreateSessionToken(Session{UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)}, cfg.SessionSecret)

	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = UserIDFromContext(r.Context())
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName(), Value: session})
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	OptionalAuth(cfg)(next).ServeHTTP(httptest.NewRecorder(), req)

	if gotUserID != "user-1" {
		t.Errorf("expected cookie identity user-1, got %q", gotUserID)
	}
}

func TestOptionalAuth_NoCredentials_PassesThrough(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := UserIDFromContext(r.Context()); ok {
			t.Error("expected no userID in context")
		}
	})

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	OptionalAuth(testConfig())(next).ServeHTTP(rec, req)

	if !called {
		t.Error("next handler should be called without credentials")
	}
}

func TestOptionalAuth_InvalidBearer_PassesThroughAnonymous(t *testing.T) {
	var ok bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = UserIDFromContext(r.Context())
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	OptionalAuth(testConfig())(next).ServeHTTP(httptest.NewRecorder(), req)

	if ok {
		t.Error("invalid token must not set a userID")
	}
}

func TestDevAuth_SetsDevUserID(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		if !ok {
			t.Error("userID not in context")
			return
		}
		if userID != DevUserID {
			t.Errorf("expected %q, got %q", DevUserID, userID)
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	DevAuth(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
