package httpapi

import (
	"net/http"
	"strings"

	"bookstand.org/internal/auth"
	"bookstand.org/internal/obs"
)

// tokenHeader is the request header carrying the JWT credential.
const tokenHeader = "token"

// publicPaths are reachable without a credential.
var publicPaths = map[string]bool{
	"/":             true,
	"/healthz":      true,
	"/readyz":       true,
	"/metrics":      true,
	"/auth/sign_up": true,
	"/auth/sign_in": true,
}

// withAuth guards every non-public route. Failures answer with a uniform 401
// so callers cannot distinguish a missing credential from an expired or
// forged one; the precise reason only reaches the log.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if publicPaths[r.URL.Path] || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := a.tokens.Verify(strings.TrimSpace(r.Header.Get(tokenHeader)))
		if err != nil {
			obs.LogRequest(map[string]any{
				"level":      "warn",
				"msg":        "auth_rejected",
				"reason":     err.Error(),
				"method":     r.Method,
				"path":       r.URL.Path,
				"request_id": RequestIDFromContext(r.Context()),
			})
			writeError(w, r, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), identity)))
	})
}
