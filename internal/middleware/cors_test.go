package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORSPreflightForAllowedOrigin(t *testing.T) {
	called := false
	handler := CORS([]string{" https://app.sindipro.local/ "})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/buildings/x/units/import/excel", nil)
	req.Header.Set("Origin", "https://app.sindipro.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if called {
		t.Fatal("preflight must not reach the handler")
	}
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "https://app.sindipro.local" {
		t.Fatalf("unexpected allow origin %q", rr.Header().Get("Access-Control-Allow-Origin"))
	}
	if rr.Header().Get("Access-Control-Allow-Methods") != corsAllowMethods {
		t.Fatalf("unexpected allow methods %q", rr.Header().Get("Access-Control-Allow-Methods"))
	}
}

func TestCORSIgnoresUnknownOrigin(t *testing.T) {
	handler := CORS([]string{"https://app.sindipro.local"})(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/api/buildings/x/units/export/excel", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected request to pass through, got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("unexpected allow origin for unknown origin")
	}
}

func TestSecurityHeadersAddsHSTSInProductionOnly(t *testing.T) {
	for env, wantHSTS := range map[string]bool{"dev": false, "production": true} {
		rr := httptest.NewRecorder()
		SecurityHeaders(env)(http.HandlerFunc(okHandler)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		if rr.Header().Get("Cache-Control") != "no-store" {
			t.Fatalf("%s: expected no-store", env)
		}
		if got := rr.Header().Get("Strict-Transport-Security") != ""; got != wantHSTS {
			t.Fatalf("%s: hsts present=%v, want %v", env, got, wantHSTS)
		}
	}
}
