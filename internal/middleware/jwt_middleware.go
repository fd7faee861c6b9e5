package middleware

import (
	"log"
	"strings"

	"sembako/internal/apperrors"
	"sembako/internal/services"

	"github.com/gofiber/fiber/v2"
)

// TokenValidator verifies a bearer token. *services.AuthService implements it.
type TokenValidator interface {
	ValidateToken(tokenString string) (*services.Identity, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return apperrors.Auth("Authorization header is required", nil)
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return apperrors.Auth("Authorization header format must be 'Bearer <token>'", nil)
		}

		identity, err := validator.ValidateToken(parts[1])
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return err
		}

		// Store the identity in Fiber context for subsequent handlers
		c.Locals("user_id", identity.UserID)
		c.Locals("username", identity.Username)

		return c.Next()
	}
}
