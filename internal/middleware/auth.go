// internal/middleware/auth.go
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"visa-checker-backend/internal/config"
	apperrors "visa-checker-backend/pkg/errors"
	"visa-checker-backend/pkg/utils"
)

type contextKey string

const emailContextKey contextKey = "email"

// Claims carried by access tokens.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Auth validates HS256 bearer tokens and puts the caller's email in the
// request context.
func Auth(cfg config.AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Get Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.SendErrorResponse(w, apperrors.NewUnauthorizedError("authentication token not found"))
				return
			}

			// Check if it's a Bearer token
			if !strings.HasPrefix(authHeader, "Bearer ") {
				utils.SendErrorResponse(w, apperrors.NewUnauthorizedError("invalid authorization format. Expected: Bearer <token>"))
				return
			}

			// Extract token
			tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			if tokenString == "" {
				utils.SendErrorResponse(w, apperrors.NewUnauthorizedError("bearer token is empty"))
				return
			}

			// Verify token
			claims, err := verifyToken(tokenString, cfg)
			if err != nil {
				utils.SendErrorResponse(w, apperrors.NewUnauthorizedError("authentication failed: "+err.Error()))
				return
			}

			if claims.Email == "" {
				utils.SendErrorResponse(w, apperrors.NewUnauthorizedError("email not found in token"))
				return
			}

			// Add email to context
			next.ServeHTTP(w, r.WithContext(WithEmail(r.Context(), claims.Email)))
		})
	}
}

func verifyToken(tokenString string, cfg config.AuthConfig) (*Claims, error) {
	// Only HS256 is accepted, whatever the token header claims
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// IssueToken signs an HS256 token for email. Used by tests and local tooling.
func IssueToken(cfg config.AuthConfig, email string, claims jwt.RegisteredClaims) (string, error) {
	if cfg.Issuer != "" && claims.Issuer == "" {
		claims.Issuer = cfg.Issuer
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Email: email, RegisteredClaims: claims})
	return token.SignedString([]byte(cfg.JWTSecret))
}

func WithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailContextKey, email)
}

// GetEmailFromContext returns the authenticated caller's email.
func GetEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailContextKey).(string)
	return email, ok && email != ""
}
