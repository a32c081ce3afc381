package middleware

import (
	"errors"
	"net/http"
	"strings"

	"bizflow_backend/internal/models"
	"bizflow_backend/internal/rbac"
	"bizflow_backend/internal/services"
	"bizflow_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// principalKey is the gin context key holding the resolved *models.Principal.
const principalKey = "principal"

// TokenValidator verifies a bearer token and returns its subject.
type TokenValidator interface {
	ValidateToken(tokenString string) (uuid.UUID, *utils.Claims, error)
}

func unauthorized(c *gin.Context, message string) {
	utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, message, ""))
}

// AuthMiddleware creates a Gin middleware for JWT authentication. The token
// subject is resolved against the staff store, then the customer store, on
// every request; the resulting principal carries a normalized role.
func AuthMiddleware(tokens TokenValidator, resolver services.PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "Authorization header required")
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			unauthorized(c, "Invalid authorization header format. Use Bearer <token>")
			return
		}

		subject, _, err := tokens.ValidateToken(parts[1])
		if err != nil {
			if errors.Is(err, utils.ErrTokenExpired) {
				unauthorized(c, "Token has expired")
				return
			}
			utils.LogDebug("Rejected bearer token", map[string]interface{}{"error": err.Error()})
			unauthorized(c, "Invalid token")
			return
		}

		principal, err := resolver.ResolvePrincipal(c.Request.Context(), subject)
		if err != nil {
			if errors.Is(err, services.ErrPrincipalNotFound) {
				unauthorized(c, "User not found")
				return
			}
			utils.LogError(err, "AuthMiddleware: failed to resolve principal")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to authenticate request", ""))
			return
		}

		c.Set(principalKey, principal)
		c.Set(utils.LogPrincipalKey, principal.ID.String())
		c.Next()
	}
}

// PrincipalFromContext returns the principal set by AuthMiddleware.
func PrincipalFromContext(c *gin.Context) (*models.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*models.Principal)
	return principal, ok && principal != nil
}

// Require gates a route on an access policy over the principal's role.
func Require(policy rbac.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			unauthorized(c, "Authentication required")
			return
		}
		if err := policy(principal.Role); err != nil {
			utils.LogWarn("Access denied", map[string]interface{}{
				"principal_id": principal.ID.String(),
				"role":         principal.Role,
				"path":         c.FullPath(),
			})
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "You do not have permission to access this resource", ""))
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return Require(rbac.RequireAdmin)
}

func RequireStaffOrAdmin() gin.HandlerFunc {
	return Require(rbac.RequireStaffOrAdmin)
}
