package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sia-validation-api/internal/models"
	"github.com/noah-isme/sia-validation-api/internal/service"
)

func newJWTAuthService() *service.AuthService {
	return service.NewAuthService(nil, nil, nil, service.AuthConfig{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "sia-validation-api",
	})
}

func signTestToken(t *testing.T, secret string) string {
	t.Helper()
	now := time.Now().UTC()
	claims := &models.JWTClaims{
		UserID: "user-1",
		Role:   models.RoleAdmin,
		Email:  "admin@school.test",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func performJWT(t *testing.T, authorization string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		c.Request.Header.Set("Authorization", authorization)
	}
	JWT(newJWTAuthService())(c)
	return c, w
}

func TestJWTAcceptsBearerToken(t *testing.T) {
	token := signTestToken(t, "test-secret")
	c, _ := performJWT(t, "Bearer "+token)
	require.False(t, c.IsAborted())

	value, exists := c.Get(ContextUserKey)
	require.True(t, exists)
	claims, ok := value.(*models.JWTClaims)
	require.True(t, ok)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestJWTRejectsMissingHeader(t *testing.T) {
	c, w := performJWT(t, "")
	require.True(t, c.IsAborted())
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTRejectsMalformedHeader(t *testing.T) {
	c, w := performJWT(t, "Token abc")
	require.True(t, c.IsAborted())
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTRejectsForeignSignature(t *testing.T) {
	token := signTestToken(t, "other-secret")
	c, w := performJWT(t, "Bearer "+token)
	require.True(t, c.IsAborted())
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
