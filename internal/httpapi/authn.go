package httpapi

import (
	"net/http"
	"strings"
	"time"

	"shopauth.org/internal/auth"
	"shopauth.org/internal/obs"
)

// withAuth resolves the caller from the Authorization header when one is
// present. Failures never block the request: the handler chain continues
// without a principal and each endpoint decides what anonymity means.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractBearerToken(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		principal, err := a.auth.Authenticate(r.Context(), raw)
		if err != nil {
			obs.LogEvent(map[string]any{
				"ts":    time.Now().UTC().Format(time.RFC3339Nano),
				"level": "debug",
				"msg":   "bearer token rejected",
				"path":  r.URL.Path,
				"error": err.Error(),
			})
			next.ServeHTTP(w, r)
			return
		}
		ctx := auth.ContextWithPrincipal(r.Context(), principal)
		ctx = auth.ContextWithToken(ctx, raw)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
