package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/fintrack/fintrack-api/models"
	"github.com/fintrack/fintrack-api/utils"
)

func newTestRouter(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthMiddleware(roles...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": GetUserID(c),
			"email":   GetUserEmail(c),
			"role":    GetUserRole(c),
		})
	})
	return r
}

func request(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	userToken, err := utils.GenerateAccessToken("user-1", "user@example.com", models.RoleUser)
	if err != nil {
		t.Fatalf("generating user token: %v", err)
	}
	adminToken, err := utils.GenerateAccessToken("admin-1", "admin@example.com", models.RoleAdmin)
	if err != nil {
		t.Fatalf("generating admin token: %v", err)
	}

	t.Run("missing token", func(t *testing.T) {
		w := request(newTestRouter(models.RoleUser), "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		w := request(newTestRouter(models.RoleUser), "not-a-jwt")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("valid token with allowed role", func(t *testing.T) {
		w := request(newTestRouter(models.RoleAdmin, models.RoleUser), userToken)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
		}
	})

	t.Run("valid token with wrong role", func(t *testing.T) {
		w := request(newTestRouter(models.RoleAdmin), userToken)
		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
		}
	})

	t.Run("admin passes admin gate", func(t *testing.T) {
		w := request(newTestRouter(models.RoleAdmin), adminToken)
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "other-secret")
		foreign, err := utils.GenerateAccessToken("user-2", "other@example.com", models.RoleUser)
		if err != nil {
			t.Fatalf("generating token: %v", err)
		}
		t.Setenv("JWT_SECRET", "test-secret")

		w := request(newTestRouter(models.RoleUser), foreign)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})
}
