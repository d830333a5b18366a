package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/edunexa/assessment-api/internal/models"
)

func rbacTestRouter(claims *models.JWTClaims, allowed ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
	})
	r.GET("/students/:studentId/results", RBAC(allowed...), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRBACAllowsListedRole(t *testing.T) {
	r := rbacTestRouter(&models.JWTClaims{UserID: "u1", TenantID: "t1", Role: models.RoleTeacher},
		string(models.RoleAdmin), string(models.RoleTeacher))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/students/s1/results", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRBACRejectsUnlistedRole(t *testing.T) {
	r := rbacTestRouter(&models.JWTClaims{UserID: "u1", TenantID: "t1", Role: models.RoleParent},
		string(models.RoleAdmin))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/students/s1/results", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRBACSelfMatchesOwnStudentID(t *testing.T) {
	r := rbacTestRouter(&models.JWTClaims{UserID: "s1", TenantID: "t1", Role: models.RoleStudent},
		string(models.RoleAdmin), "SELF")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/students/s1/results", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRBACSelfRejectsOtherStudent(t *testing.T) {
	r := rbacTestRouter(&models.JWTClaims{UserID: "s1", TenantID: "t1", Role: models.RoleStudent},
		string(models.RoleAdmin), "SELF")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/students/s2/results", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRBACMissingClaims(t *testing.T) {
	r := rbacTestRouter(nil, string(models.RoleAdmin))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/students/s1/results", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
