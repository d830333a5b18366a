package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/edunexa/assessment-api/internal/middleware"
	"github.com/edunexa/assessment-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func tenantFromContext(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.TenantID
	}
	return ""
}

func actorFromContext(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return ""
}
