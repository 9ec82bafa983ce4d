package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/dungpham-npc/storefront/pkg/errors"
	"github.com/dungpham-npc/storefront/pkg/httputil"
	"github.com/dungpham-npc/storefront/pkg/logger"
)

type claimsKey struct{}

// Claims is the identity carried by a validated bearer token. Role keeps the
// token's "ROLE_" prefix.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// TokenValidator validates a raw bearer token and returns its claims. It must
// return an error for missing, malformed, expired or revoked tokens.
type TokenValidator func(ctx context.Context, token string) (*Claims, error)

// PublicRoute is an allow-listed method and path prefix that needs no token.
type PublicRoute struct {
	Method string
	Prefix string
}

func isPublic(routes []PublicRoute, r *http.Request) bool {
	if r.Method == http.MethodOptions {
		return true
	}
	for _, route := range routes {
		if r.Method == route.Method && strings.HasPrefix(r.URL.Path, route.Prefix) {
			return true
		}
	}
	return false
}

// Auth rejects requests without a valid bearer token unless they match one of
// the public routes. A missing token yields Unauthorized, a rejected token
// InvalidToken. Validated claims are stored in the request context.
func Auth(validate TokenValidator, public []PublicRoute, l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(public, r) {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := httputil.BearerToken(r)
			if !ok {
				httputil.WriteError(w, r, apperrors.Unauthorized(r.URL.Path), l)
				return
			}

			claims, err := validate(r.Context(), token)
			if err != nil {
				l.DebugContext(r.Context(), "bearer token rejected",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				httputil.WriteError(w, r, apperrors.InvalidToken(), l)
				return
			}

			ctx := WithClaims(r.Context(), claims)
			ctx = logger.WithUserID(ctx, claims.UserID)
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, l))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated requests whose role is not one of roles.
func RequireRole(l *slog.Logger, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				httputil.WriteError(w, r, apperrors.Unauthorized(r.URL.Path), l)
				return
			}
			if _, ok := allowed[claims.Role]; !ok {
				httputil.WriteError(w, r, apperrors.Forbidden(r.URL.Path), l)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithClaims stores claims in ctx.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext returns the claims stored by Auth.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok && c != nil
}
