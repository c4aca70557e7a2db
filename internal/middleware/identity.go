package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/buildcare/defect-backend/internal/dto"
	"github.com/buildcare/defect-backend/internal/models"
	"github.com/buildcare/defect-backend/internal/policy"
	"github.com/buildcare/defect-backend/internal/services"
)

const principalKey = "principal"

// Principal is the request identity: the loaded user plus their role parsed
// into the closed enum. It is resolved exactly once per request, here, and
// passed explicitly into the service layer.
type Principal struct {
	User *models.User
	Role policy.Role
}

func (p *Principal) Actor() services.Actor {
	return services.Actor{ID: p.User.ID, Role: p.Role}
}

// ResolveIdentity runs after JWTProtected: it loads the user behind the
// token's sub claim and normalizes the stored role string once.
func ResolveIdentity(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok || token == nil {
			return unauthorized(c)
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return unauthorized(c)
		}
		sub, _ := claims["sub"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			return unauthorized(c)
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			return unauthorized(c)
		}

		role := policy.ParseRole(user.Role)
		if role == policy.RoleUnknown {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Message: "forbidden",
			})
		}

		c.Locals(principalKey, &Principal{User: &user, Role: role})
		return c.Next()
	}
}

// CurrentPrincipal returns the identity resolved by ResolveIdentity.
func CurrentPrincipal(c *fiber.Ctx) (*Principal, bool) {
	p, ok := c.Locals(principalKey).(*Principal)
	return p, ok
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Message: "unauthorized",
	})
}
