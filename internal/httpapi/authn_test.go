package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookstand.org/internal/auth"
	"bookstand.org/internal/catalog"
)

func issueToken(t *testing.T, secret string, opts ...auth.TokenOption) string {
	t.Helper()
	tokens, err := auth.NewTokens(secret, opts...)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	credential, _, err := tokens.Generate(1, "user")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return credential
}

func TestGuardRejectsUniformly(t *testing.T) {
	f := newFixture(t)

	past := time.Now().Add(-time.Hour)
	cases := map[string]string{
		"missing":      "",
		"garbage":      "not-a-jwt",
		"wrong secret": issueToken(t, "another-secret-entirely-here"),
		"expired": issueToken(t, testSecret,
			auth.WithTTL(time.Minute),
			auth.WithClock(func() time.Time { return past })),
	}

	for name, credential := range cases {
		c := f.client(t)
		c.token = credential
		resp, body := c.do(http.MethodGet, "/authors", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: status %d, want 401", name, resp.StatusCode)
		}
		// Same body for every failure mode.
		errBody := decode[struct {
			Error string `json:"error"`
		}](t, body)
		if errBody.Error != "invalid token" {
			t.Fatalf("%s: error %q, want %q", name, errBody.Error, "invalid token")
		}
	}
}

func TestGuardAdmitsValidToken(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	c.token = issueToken(t, testSecret)

	resp, body := c.do(http.MethodGet, "/authors", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d body %s", resp.StatusCode, body)
	}
}

func TestGuardSkipsPublicPaths(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		resp, _ := c.do(http.MethodGet, path, nil)
		if resp.StatusCode == http.StatusUnauthorized {
			t.Fatalf("%s must not require a token", path)
		}
	}
}

func TestGuardPropagatesIdentity(t *testing.T) {
	tokens, err := auth.NewTokens(testSecret)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}

	var seen auth.Identity
	api := New(catalog.NewMemory(), auth.NewMemoryUsers(), tokens)
	api.mux.HandleFunc("/spy", func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	credential, _, err := tokens.Generate(77, "user")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	req, _ := http.NewRequest(http.MethodGet, "/spy", nil)
	req.Header.Set("token", credential)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status %d", rec.Code)
	}
	if seen.UserID != 77 || seen.Role != "user" {
		t.Fatalf("unexpected identity: %+v", seen)
	}
}
