package models

import "github.com/golang-jwt/jwt/v5"

// UserRole enumerates the roles the engine distinguishes. Role management
// itself is external; the engine only consumes the claim.
type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
	RoleAdmin      UserRole = "ADMIN"
	RoleTeacher    UserRole = "TEACHER"
	RoleStudent    UserRole = "STUDENT"
	RoleParent     UserRole = "PARENT"
)

// JWTClaims represents the JWT payload for access tokens issued by the
// platform's auth service. TenantID scopes every downstream query.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	TenantID string   `json:"tenant_id"`
	Role     UserRole `json:"role"`
	jwt.RegisteredClaims
}
