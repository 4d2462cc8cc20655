package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/honeynil/BankBackOffice/internal/infrastructure/redis"
	"github.com/honeynil/BankBackOffice/internal/models"
)

type contextKey string

const claimsKey contextKey = "claims"

// AuthMiddleware accepts a bearer token only if it verifies and is still the token stored for its user.
func AuthMiddleware(redisClient redis.RedisClient, jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "authorization header missing", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid authorization header", http.StatusUnauthorized)
				return
			}

			tokenStr := parts[1]
			claims, err := ValidateJWT([]byte(jwtSecret), tokenStr)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			storedToken, err := redisClient.Get(r.Context(), TokenKey(claims.UserID))
			if err != nil || storedToken != tokenStr {
				slog.Error("invalid or revoked token", "user_id", claims.UserID, "error", err)
				http.Error(w, "invalid or revoked token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok || claims.Role != role {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithClaims(ctx context.Context, claims *models.TokenClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func ClaimsFrom(ctx context.Context) (*models.TokenClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*models.TokenClaims)
	return claims, ok
}

func UserIDFrom(ctx context.Context) (uuid.UUID, bool) {
	claims, ok := ClaimsFrom(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return claims.UserID, true
}
