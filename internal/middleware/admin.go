package middleware

import (
	"errors"
	"log/slog"

	"github.com/gendata/gendata-api/internal/dto"
	"github.com/gendata/gendata-api/internal/models"
	"github.com/gendata/gendata-api/internal/services"
	"github.com/gendata/gendata-api/internal/store"
	"github.com/gofiber/fiber/v2"
)

const currentUserKey = "current_user"

// AdminRequired resolves the token subject to a stored user and lets the
// request through only for active admins. Must run after JWTProtected.
func AdminRequired(users services.UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		login, _ := c.Locals(subjectKey).(string)
		if login == "" {
			return unauthorized(c)
		}

		user, err := users.GetByLogin(c.UserContext(), login)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return unauthorized(c)
			}
			slog.Error("admin lookup failed", "action", "admin_check", "login", login, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Internal server error",
			})
		}
		if !user.IsActive {
			return unauthorized(c)
		}
		if user.Role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Admin access required",
			})
		}

		c.Locals(currentUserKey, user)
		return c.Next()
	}
}

// CurrentUser returns the admin resolved by AdminRequired, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(currentUserKey).(*models.User)
	return user
}
