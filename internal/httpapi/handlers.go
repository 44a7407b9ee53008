// Package httpapi exposes the catalog and account operations over HTTP.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"bookstand.org/internal/auth"
	"bookstand.org/internal/catalog"
	"bookstand.org/internal/obs"
)

const maxBodyBytes = 1 << 20

// ReadyProbe reports dependency health for /readyz.
type ReadyProbe struct {
	DB *sql.DB
}

func (p ReadyProbe) check(ctx context.Context) error {
	if p.DB == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.DB.PingContext(ctx)
}

// API routes requests to the catalog and account services.
type API struct {
	mux     *http.ServeMux
	probe   ReadyProbe
	version string

	catalog catalog.Store
	users   auth.UserStore
	tokens  *auth.Tokens

	rateBurst  int
	ratePerSec int
}

// Option customizes the API.
type Option func(*API)

// WithReadyProbe wires a dependency probe into /readyz.
func WithReadyProbe(p ReadyProbe) Option {
	return func(a *API) { a.probe = p }
}

// WithVersion sets the version string reported by /healthz.
func WithVersion(v string) Option {
	return func(a *API) { a.version = v }
}

// WithRateLimit overrides the default per-client throttle.
func WithRateLimit(burst, perSec int) Option {
	return func(a *API) {
		a.rateBurst = burst
		a.ratePerSec = perSec
	}
}

// New assembles the API around its stores and token authority.
func New(store catalog.Store, users auth.UserStore, tokens *auth.Tokens, opts ...Option) *API {
	a := &API{
		mux:        http.NewServeMux(),
		version:    "dev",
		catalog:    store,
		users:      users,
		tokens:     tokens,
		rateBurst:  50,
		ratePerSec: 25,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.mux.HandleFunc("/healthz", a.handleHealthz)
	a.mux.HandleFunc("/readyz", a.handleReadyz)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/auth/sign_up", a.handleSignUp)
	a.mux.HandleFunc("/auth/sign_in", a.handleSignIn)
	a.mux.HandleFunc("/auth/me", a.handleMe)

	a.mux.HandleFunc("/authors", a.handleAuthorsCollection)
	a.mux.HandleFunc("/authors/", a.handleAuthorResource)
	a.mux.HandleFunc("/books", a.handleBooksCollection)
	a.mux.HandleFunc("/books/", a.handleBookResource)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not found")
	})

	return a
}

// Handler returns the API wrapped in its middleware chain. Order matters:
// request ids first so every log line and error body can carry one, metrics
// inside logging so the canonical path label sees the raw request, auth last
// so throttling applies to unauthenticated traffic too.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = MaxBodyBytes(maxBodyBytes)(h)
	h = RateLimit(a.rateBurst, a.ratePerSec)(h)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = obs.Instrument(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return h
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": a.version,
	})
}

func (a *API) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if err := a.probe.check(r.Context()); err != nil {
		obs.LogRequest(map[string]any{
			"level":      "error",
			"msg":        "readiness_probe_failed",
			"error":      err.Error(),
			"request_id": RequestIDFromContext(r.Context()),
		})
		writeError(w, r, http.StatusServiceUnavailable, "dependencies unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders the uniform error envelope. The request id rides along
// so clients can quote it when reporting problems.
func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	body := map[string]string{"error": msg}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		body["request_id"] = rid
	}
	writeJSON(w, status, body)
}

// storeError maps catalog failures onto HTTP responses. notFoundMsg supplies
// the resource-specific wording for missing records.
func (a *API) storeError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, r, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, catalog.ErrForeignKey):
		writeError(w, r, http.StatusConflict, "referenced author does not exist")
	default:
		obs.LogRequest(map[string]any{
			"level":      "error",
			"msg":        "store_error",
			"error":      err.Error(),
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": RequestIDFromContext(r.Context()),
		})
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("invalid request body: trailing data")
	}
	return nil
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	for _, m := range allowed {
		w.Header().Add("Allow", m)
	}
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}
