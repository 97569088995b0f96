package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sia-validation-api/internal/models"
)

func performRBAC(t *testing.T, claims *models.JWTClaims, roles ...models.UserRole) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/", nil)
	if claims != nil {
		c.Set(ContextUserKey, claims)
	}

	called := false
	RequireRoles(roles...)(c)
	if !c.IsAborted() {
		called = true
		c.Status(http.StatusOK)
	}
	if called {
		require.Equal(t, http.StatusOK, w.Code)
	}
	return w
}

func TestRequireRolesAllowsListedRole(t *testing.T) {
	w := performRBAC(t, &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin}, models.RoleAdmin, models.RoleSuperAdmin)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesRejectsOtherRole(t *testing.T) {
	w := performRBAC(t, &models.JWTClaims{UserID: "u1", Role: models.RoleInstructor}, models.RoleAdmin)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRolesRejectsMissingClaims(t *testing.T) {
	w := performRBAC(t, nil, models.RoleAdmin)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
