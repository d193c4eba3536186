package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"calendar-backend/pkg/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

// echoUser replies with the user id the middleware resolved
func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := common.GetUserID(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(userID))
	})
}

func TestAuthenticate(t *testing.T) {
	cfg := AuthConfig{Secret: testSecret}
	handler := Authenticate(cfg, zap.NewNop())(echoUser())

	t.Run("valid token resolves the subject", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{
			"sub": "user-42",
			"exp": time.Now().Add(time.Hour).Unix(),
		}, testSecret)

		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-42", rec.Body.String())
	})

	t.Run("missing header is 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
	})

	t.Run("wrong secret is 401", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{
			"sub": "user-42",
			"exp": time.Now().Add(time.Hour).Unix(),
		}, "other-secret")

		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token is 401", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{
			"sub": "user-42",
			"exp": time.Now().Add(-time.Hour).Unix(),
		}, testSecret)

		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token without subject is 401", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		}, testSecret)

		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("issuer mismatch is 401", func(t *testing.T) {
		issuerHandler := Authenticate(AuthConfig{
			Secret: testSecret,
			Issuer: "calendar-backend",
		}, zap.NewNop())(echoUser())

		token := signToken(t, jwt.MapClaims{
			"sub": "user-42",
			"iss": "someone-else",
			"exp": time.Now().Add(time.Hour).Unix(),
		}, testSecret)

		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		issuerHandler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthenticateGatewayHeader(t *testing.T) {
	t.Run("trusted header accepted when enabled", func(t *testing.T) {
		handler := Authenticate(AuthConfig{TrustGatewayHeader: true}, zap.NewNop())(echoUser())

		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req.Header.Set(HeaderAuthorizedUserID, "user-7")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-7", rec.Body.String())
	})

	t.Run("header ignored when disabled", func(t *testing.T) {
		handler := Authenticate(AuthConfig{Secret: testSecret}, zap.NewNop())(echoUser())

		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req.Header.Set(HeaderAuthorizedUserID, "user-7")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
