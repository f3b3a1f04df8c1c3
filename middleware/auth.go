package middleware

import (
	"fmt"
	"os"
	"strings"

	"sim-bleepy/constants"
	"sim-bleepy/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// VerifyJWT verifies a session token and returns its claims.
func VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid JWT token")
	}
	return claims, nil
}

// IsAuthenticated checks for a valid session token and, when roles are
// given, that the caller holds one of them. Claims end up in
// c.Locals("user"); the role shortcut in c.Locals("role").
func IsAuthenticated(roles []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		var token string

		if authHeader != "" {
			// Validate Bearer Token
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid authorization header format",
				})
			}
			token = tokenParts[1]
		} else {
			// Try to get token from cookie as fallback
			token = c.Cookies("access")
			if token == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Authorization token missing",
				})
			}
		}

		claims, err := VerifyJWT(token)
		if err != nil {
			logger.Error("JWT verification failed", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		role, _ := claims["role"].(string)
		if len(roles) > 0 && !roleAllowed(role, roles) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Insufficient role for this resource",
			})
		}

		c.Locals("user", claims)
		c.Locals("role", role)
		return c.Next()
	}
}

// RequireAuth only requires a valid session without a specific role.
func RequireAuth() fiber.Handler {
	return IsAuthenticated(nil)
}

// RequireRoles requires one of the given roles.
func RequireRoles(roles ...string) fiber.Handler {
	return IsAuthenticated(roles)
}

// RequirePrivileged requires an admin-equivalent role.
func RequirePrivileged() fiber.Handler {
	return IsAuthenticated(constants.PrivilegedRoles)
}

func roleAllowed(role string, allowed []string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
