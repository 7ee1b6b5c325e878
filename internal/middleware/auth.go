package middleware

import (
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/dto"
)

func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtConfig(cfg, nil))
}

// OptionalJWT validates the bearer token when one is sent and lets anonymous
// requests through untouched. A malformed or expired token is still a 401.
func OptionalJWT(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtConfig(cfg, func(c *fiber.Ctx) bool {
		return c.Get(fiber.HeaderAuthorization) == ""
	}))
}

func jwtConfig(cfg *config.Config, filter func(*fiber.Ctx) bool) jwtware.Config {
	return jwtware.Config{
		Filter:     filter,
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	}
}
