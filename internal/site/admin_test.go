package site

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

var testAdminKey = []byte("0123456789abcdef0123456789abcdef")

func newTestAdmin(t *testing.T) *AdminAuth {
	t.Helper()
	admin, err := NewAdminAuth("owner", "s3cret", testAdminKey, false)
	if err != nil {
		t.Fatalf("new admin auth: %v", err)
	}
	return admin
}

func login(t *testing.T, env *testEnv, user, pass string) *httptest.ResponseRecorder {
	t.Helper()
	return env.do(postForm("/admin/login", url.Values{"username": {user}, "password": {pass}}))
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == adminCookie {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestNewAdminAuth(t *testing.T) {
	if _, err := NewAdminAuth("a", "b", []byte("short"), true); err == nil {
		t.Fatal("expected error for short key")
	}

	admin, err := NewAdminAuth("", "", testAdminKey, false)
	if err != nil || admin != nil {
		t.Fatalf("release mode without credentials = (%v, %v), want disabled", admin, err)
	}

	admin, err = NewAdminAuth("", "", testAdminKey, true)
	if err != nil {
		t.Fatalf("debug mode: %v", err)
	}
	if !admin.Check(devAdminUsername, devAdminPassword) {
		t.Fatal("debug mode should fall back to development credentials")
	}
}

func TestAdminTokenVerification(t *testing.T) {
	admin := newTestAdmin(t)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	admin.now = func() time.Time { return now }

	token, err := admin.Issue()
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := admin.Verify(token); err != nil {
		t.Fatalf("fresh token rejected: %v", err)
	}

	other, err := NewAdminAuth("owner", "s3cret", []byte("fedcba9876543210fedcba9876543210"), false)
	if err != nil {
		t.Fatalf("new admin auth: %v", err)
	}
	if err := other.Verify(token); err == nil {
		t.Fatal("token signed with another key must be rejected")
	}

	now = now.Add(adminSessionTTL + time.Minute)
	if err := admin.Verify(token); err == nil {
		t.Fatal("expired token must be rejected")
	}
	if err := admin.Verify(""); err == nil {
		t.Fatal("empty token must be rejected")
	}
}

func TestAdminRoutesDisabledWithoutAuth(t *testing.T) {
	env := newTestEnv(t, &recordingSender{}, nil)
	w := env.do(httptest.NewRequest(http.MethodGet, "/admin/login", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestAdminLoginFlow(t *testing.T) {
	env := newTestEnv(t, &recordingSender{}, newTestAdmin(t))

	w := env.do(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/admin/login" {
		t.Fatalf("unauthenticated dashboard = %d %q, want redirect to login", w.Code, w.Header().Get("Location"))
	}

	w = login(t, env, "owner", "wrong")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if !strings.Contains(w.Body.String(), "Invalid credentials") {
		t.Fatal("expected invalid credentials message")
	}

	w = login(t, env, "owner", "s3cret")
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/admin/dashboard" {
		t.Fatalf("login = %d %q, want redirect to dashboard", w.Code, w.Header().Get("Location"))
	}
	cookie := sessionCookie(t, w)
	if !cookie.HttpOnly {
		t.Fatal("session cookie must be HttpOnly")
	}

	for _, path := range []string{"/admin/dashboard", "/admin/visitors", "/admin/deliveries", "/admin/api/stats"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(cookie)
		if w := env.do(req); w.Code != http.StatusOK {
			t.Fatalf("%s status = %d, want %d", path, w.Code, http.StatusOK)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/export/stats", nil)
	req.AddCookie(cookie)
	w = env.do(req)
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, "attachment") {
		t.Fatalf("Content-Disposition = %q, want attachment", got)
	}

	req = httptest.NewRequest(http.MethodPost, "/admin/privacy/cleanup", nil)
	req.AddCookie(cookie)
	if w := env.do(req); w.Code != http.StatusFound {
		t.Fatalf("cleanup status = %d, want %d", w.Code, http.StatusFound)
	}
}

func TestAdminRejectsForgedCookie(t *testing.T) {
	env := newTestEnv(t, &recordingSender{}, newTestAdmin(t))

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: adminCookie, Value: "not.a.jwt"})
	w := env.do(req)
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusFound)
	}
}
