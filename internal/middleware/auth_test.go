package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"deckcast/internal/domain"
	"deckcast/internal/service/auth"
	"deckcast/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func userEchoHandler(captured **domain.UserProfile) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth(t *testing.T) {
	authService := auth.NewService(testSecret, logger.NewNop())
	validToken := signToken(t, testSecret, jwt.MapClaims{
		"sub":   "user-1",
		"email": "user@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectUser     bool
	}{
		{
			name:           "valid bearer token",
			authHeader:     "Bearer " + validToken,
			expectedStatus: http.StatusOK,
			expectUser:     true,
		},
		{
			name:           "missing header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong scheme",
			authHeader:     "Basic abc123",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "empty token",
			authHeader:     "Bearer ",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "garbage token",
			authHeader:     "Bearer not.a.jwt",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured *domain.UserProfile
			handler := Auth(authService, logger.NewNop())(userEchoHandler(&captured))

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectUser {
				require.NotNil(t, captured)
				assert.Equal(t, "user-1", captured.Sub)
				assert.Equal(t, "user@example.com", captured.Email)
			} else {
				assert.Nil(t, captured)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	authService := auth.NewService(testSecret, logger.NewNop())
	validToken := signToken(t, testSecret, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name       string
		authHeader string
		expectUser bool
	}{
		{
			name:       "valid token attaches identity",
			authHeader: "Bearer " + validToken,
			expectUser: true,
		},
		{
			name:       "no header continues anonymously",
			authHeader: "",
		},
		{
			name:       "invalid token continues anonymously",
			authHeader: "Bearer not.a.jwt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured *domain.UserProfile
			handler := OptionalAuth(authService, logger.NewNop())(userEchoHandler(&captured))

			req := httptest.NewRequest(http.MethodGet, "/open", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			// The open route always answers, with or without a login.
			assert.Equal(t, http.StatusOK, rec.Code)
			if tt.expectUser {
				require.NotNil(t, captured)
				assert.Equal(t, "user-1", captured.Sub)
			} else {
				assert.Nil(t, captured)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	var gotID string
	handler := RequestID(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = r.Context().Value(RequestIDContextKey).(string)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.NotEmpty(t, gotID)
	assert.Equal(t, gotID, rec.Header().Get("X-Request-ID"))
}

func TestCORS(t *testing.T) {
	config := DefaultCORSConfig([]string{"https://app.example.com"})
	handler := CORS(config)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("allowed origin gets CORS headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("unknown origin gets no allow header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
