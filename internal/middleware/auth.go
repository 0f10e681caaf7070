package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"planetwars-server/internal/auth"
	"planetwars-server/internal/shared/errors"
	"planetwars-server/internal/shared/response"
)

type contextKey string

const ClaimsContextKey contextKey = "claims"

// JWTMiddleware requires an "Authorization: Bearer <token>" header signed
// with secret and stores the claims in the request context.
func JWTMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := slog.With(
				"middleware", "jwt",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				response.Error(w, r, logger, errors.Unauthorized("authentication required"))
				return
			}

			claims, err := auth.ValidateToken(secret, token)
			if err != nil {
				response.ErrorWithMessage(w, r, logger, errors.Unauthorized(err.Error()), "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			logger.Debug("JWT authentication successful", "operator", claims.Operator, "role", claims.Role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetClaimsFromContext(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(ClaimsContextKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}
