package middleware

import (
	"log/slog"
	"net/http"

	"planetwars-server/internal/auth"
	"planetwars-server/internal/shared/errors"
	"planetwars-server/internal/shared/response"
)

func OperatorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.With(
			"middleware", "operator",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		claims := GetClaimsFromContext(r)
		if claims == nil {
			response.Error(w, r, logger, errors.Unauthorized("authentication required"))
			return
		}

		if claims.Role != auth.RoleOperator {
			logger.Warn("Non-operator attempted to control the match",
				"operator", claims.Operator,
				"role", claims.Role)
			response.Error(w, r, logger, errors.Forbidden("operator access required"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireOperator authenticates the request and then checks the role
func RequireOperator(secret string, next http.Handler) http.Handler {
	return JWTMiddleware(secret)(OperatorMiddleware(next))
}
