package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-api/internal/config"
	"recipe-api/internal/middleware"
)

const testSecret = "test-secret-key-for-jwt-signing"

type fakeTokens struct {
	live map[string]bool
}

func (f *fakeTokens) TokenExists(jti string) (bool, error) {
	return f.live[jti], nil
}

func newAuthTestRouter(tokens middleware.TokenChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWTSecret: testSecret}
	router := gin.New()
	router.GET("/protected", middleware.AuthMiddleware(cfg, tokens), func(c *gin.Context) {
		id, _ := middleware.UserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id})
	})
	return router
}

func signToken(t *testing.T, secret, sub, jti string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"jti": jti,
		"iat": time.Now().Unix(),
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func serve(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	router := newAuthTestRouter(&fakeTokens{})

	w := serve(router, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing authorization header")
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	router := newAuthTestRouter(&fakeTokens{})

	w := serve(router, "Token abc123")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid authorization header format")
}

func TestAuthMiddlewareGarbageToken(t *testing.T) {
	router := newAuthTestRouter(&fakeTokens{})

	w := serve(router, "Bearer not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid token")
}

func TestAuthMiddlewareWrongSecret(t *testing.T) {
	router := newAuthTestRouter(&fakeTokens{live: map[string]bool{"jti-1": true}})

	signed := signToken(t, "some-other-secret", "7", "jti-1", time.Now().Add(time.Hour))
	w := serve(router, "Bearer "+signed)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	router := newAuthTestRouter(&fakeTokens{live: map[string]bool{"jti-1": true}})

	signed := signToken(t, testSecret, "7", "jti-1", time.Now().Add(-time.Hour))
	w := serve(router, "Bearer "+signed)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRevokedToken(t *testing.T) {
	router := newAuthTestRouter(&fakeTokens{live: map[string]bool{}})

	signed := signToken(t, testSecret, "7", "jti-1", time.Now().Add(time.Hour))
	w := serve(router, "Bearer "+signed)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "revoked")
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	router := newAuthTestRouter(&fakeTokens{live: map[string]bool{"jti-1": true}})

	signed := signToken(t, testSecret, "7", "jti-1", time.Now().Add(time.Hour))
	w := serve(router, "Bearer "+signed)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
}
