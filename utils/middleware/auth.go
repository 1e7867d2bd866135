package middleware

import (
	"strings"

	"github.com/craftclass/storefront-api/utils/auth"
	"github.com/craftclass/storefront-api/utils/response"
	"github.com/gofiber/fiber/v2"
)

const claimsLocalKey = "dashboard_claims"

// AuthMiddleware handles JWT authentication for the dashboard read API
type AuthMiddleware struct {
	jwtManager *auth.JWTManager
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
	}
}

// Required is middleware that requires a valid JWT token
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Missing authorization token")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return response.Unauthorized(c, "Invalid authorization format")
		}

		claims, err := m.jwtManager.ValidateToken(parts[1])
		if err != nil {
			if err == auth.ErrExpiredToken {
				return response.Unauthorized(c, "Token has expired")
			}
			return response.Unauthorized(c, "Invalid token")
		}

		c.Locals(claimsLocalKey, claims)
		return c.Next()
	}
}

// AdminOnly requires an authenticated admin; must run after Required
func (m *AuthMiddleware) AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := GetClaims(c)
		if !ok || claims.Role != "admin" {
			return response.Error(c, fiber.StatusForbidden, "Admin access required", "FORBIDDEN")
		}
		return c.Next()
	}
}

// GetClaims returns the validated claims stored by Required
func GetClaims(c *fiber.Ctx) (*auth.Claims, bool) {
	claims, ok := c.Locals(claimsLocalKey).(*auth.Claims)
	return claims, ok
}
