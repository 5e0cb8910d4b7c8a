package middleware

import (
	"context"
	"net/http"
	"strings"

	"codexa/internal/app/service"
	"codexa/internal/common"
	"codexa/internal/common/security"
	"codexa/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
	"github.com/redis/go-redis/v9"
)

type contextKey string

const (
	UserIDCtxKey   contextKey = "userID"
	UserRoleCtxKey contextKey = "userRole"
)

// TokenFromCookie reads the JWT from the "token" cookie the auth handlers set.
func TokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie("token")
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Verifier validates the JWT found in the token cookie or the Authorization
// header and puts its claims into the request context.
func Verifier(next http.Handler) http.Handler {
	return jwtauth.Verify(security.TokenAuth, TokenFromCookie, jwtauth.TokenFromHeader)(next)
}

// Authenticator requires a valid, non-revoked token. Revocation is tracked in
// Redis by the logout flow.
func Authenticator(rdb *redis.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())

			if err != nil {
				if strings.Contains(err.Error(), "token not found") || token == nil {
					common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
				} else {
					common.RespondWithError(w, http.StatusUnauthorized, "Invalid token: "+err.Error())
				}
				return
			}

			if token == nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			raw := TokenFromCookie(r)
			if raw == "" {
				raw = jwtauth.TokenFromHeader(r)
			}
			blocked, err := service.IsTokenBlocked(r.Context(), rdb, raw)
			if err != nil {
				common.RespondWithError(w, http.StatusInternalServerError, "Token validation failed")
				return
			}
			if blocked {
				common.RespondWithError(w, http.StatusUnauthorized, "Token has been revoked")
				return
			}

			userID, err := security.GetUserIDFromClaims(claims)
			if err != nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
				return
			}
			userRole, err := security.GetUserRoleFromClaims(claims)
			if err != nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), UserIDCtxKey, userID)
			ctx = context.WithValue(ctx, UserRoleCtxKey, userRole)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := r.Context().Value(UserRoleCtxKey).(string)
		if !ok || role != model.RoleAdmin {
			common.RespondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Helper to get user ID from context
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	return userID, ok
}

// Helper to get user role from context
func GetUserRoleFromContext(ctx context.Context) (string, bool) {
	userRole, ok := ctx.Value(UserRoleCtxKey).(string)
	return userRole, ok
}
