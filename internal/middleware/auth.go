package middleware

import (
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"

	"github.com/buildcare/defect-backend/internal/config"
	"github.com/buildcare/defect-backend/internal/dto"
)

// JWTProtected validates the bearer access token by signature and expiry
// only; nothing about access tokens is held server-side.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Message: "invalid or expired token",
			})
		},
	})
}
