package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"deckcast/internal/domain"
	"deckcast/internal/service"
	"deckcast/pkg/errors"
	"deckcast/pkg/logger"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// UserContextKey is the key for user information in context
	UserContextKey ContextKey = "user"
	// RequestIDContextKey is the key for request ID in context
	RequestIDContextKey ContextKey = "request_id"
)

// Auth creates an authentication middleware requiring a valid bearer
// token.
func Auth(authService service.AuthService, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeErrorResponse(w, errors.NewAuthenticationError("Authorization header is required"), logger)
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeErrorResponse(w, errors.NewAuthenticationError("Invalid authorization header format"), logger)
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == "" {
				writeErrorResponse(w, errors.NewAuthenticationError("Token is required"), logger)
				return
			}

			ctx := r.Context()
			userProfile, err := authService.ValidateToken(ctx, token)
			if err != nil {
				logger.WithError(err).Debug("Token validation failed")
				writeErrorResponse(w, errors.NewAuthenticationError("Invalid or expired token"), logger)
				return
			}

			ctx = context.WithValue(ctx, UserContextKey, userProfile)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth validates a bearer token when one is present and
// continues anonymously otherwise. Audience routes use this: voting
// needs no account, but a logged-in voter gets their identity attached.
func OptionalAuth(authService service.AuthService, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			userProfile, err := authService.ValidateToken(ctx, token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx = context.WithValue(ctx, UserContextKey, userProfile)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext extracts the authenticated profile, if any.
func UserFromContext(ctx context.Context) *domain.UserProfile {
	if user, ok := ctx.Value(UserContextKey).(*domain.UserProfile); ok {
		return user
	}
	return nil
}

// RequestID creates a middleware that adds a unique request ID to each request
func RequestID(logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := generateRequestID()

			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
			r = r.WithContext(ctx)

			w.Header().Set("X-Request-ID", requestID)

			next.ServeHTTP(w, r)
		})
	}
}

// generateRequestID generates a simple request ID
func generateRequestID() string {
	return fmt.Sprintf("%d-%d", time.Now().Unix(), time.Now().Nanosecond())
}

// writeErrorResponse writes an error response to the client
func writeErrorResponse(w http.ResponseWriter, appErr *errors.AppError, logger *logger.Logger) {
	logger.WithError(appErr).Warn("Request rejected")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)

	timestamp := time.Now().UTC().Format(time.RFC3339)
	w.Write([]byte(`{"error":{"type":"` + string(appErr.Type) + `","message":"` + appErr.Message + `","timestamp":"` + timestamp + `"}}`))
}
