package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yourorg/estatehub/internal/security/audit"
	"github.com/yourorg/estatehub/internal/security/auth"
	"github.com/yourorg/estatehub/internal/security/ratelimit"
)

type UserContextKey struct{}
type ClaimsContextKey struct{}

// isPublicPath reports whether a path is reachable without a credential.
// Property browsing is public; everything under /api/offers and
// /api/auth/profile requires auth.
func isPublicPath(r *http.Request) bool {
	p := r.URL.Path
	switch p {
	case "/healthz", "/readyz", "/metrics",
		"/api/auth/register", "/api/auth/login":
		return true
	}
	if strings.HasPrefix(p, "/ws/offers/") {
		return true
	}
	if strings.HasPrefix(p, "/api/properties") {
		return r.Method == http.MethodGet
	}
	return false
}

func JWTMiddleware(tm *auth.TokenManager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r) {
				next.ServeHTTP(w, r)
				return
			}

			tokenString, err := auth.TokenFromRequest(r)
			if err != nil {
				http.Error(w, `{"error":"no token provided"}`, http.StatusUnauthorized)
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				log.Debug("token rejected", slog.String("error", err.Error()))
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)
			ctx = context.WithValue(ctx, UserContextKey{}, claims.UserID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/healthz", "/readyz", "/metrics":
				next.ServeHTTP(w, r)
				return
			}

			// Credential endpoints get a stricter per-address window
			if r.URL.Path == "/api/auth/login" || r.URL.Path == "/api/auth/register" {
				if !limiter.AllowStrict(r.RemoteAddr, 10, limiter.Window()) {
					http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			key := ""
			if u := r.Context().Value(UserContextKey{}); u != nil {
				key = u.(string)
			}

			if !limiter.Allow(key) {
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := ""
			if u := r.Context().Value(UserContextKey{}); u != nil {
				userID = u.(string)
			}

			if r.Method == http.MethodPost && r.URL.Path == "/api/offers" {
				auditLog.LogAction(r.Context(), userID, "create", "offer", "", "initiated", "")
			}
			if r.Method == http.MethodPatch && strings.HasSuffix(r.URL.Path, "/status") {
				auditLog.LogAction(r.Context(), userID, "update_status", "offer", r.PathValue("offerId"), "initiated", "")
			}

			next.ServeHTTP(w, r)
		})
	}
}

func GetUserFromContext(ctx context.Context) string {
	if u := ctx.Value(UserContextKey{}); u != nil {
		return u.(string)
	}
	return ""
}

func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(ClaimsContextKey{}); c != nil {
		return c.(*auth.Claims)
	}
	return nil
}
