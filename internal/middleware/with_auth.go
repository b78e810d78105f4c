package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/profileiq-api/internal/utils"
)

// Roles understood by WithAuth.
const (
	AuthRoleAny       = "any"
	AuthRoleStudent   = "student"
	AuthRoleCounselor = "counselor"
)

// AuthOptions configures WithAuth.
type AuthOptions struct {
	Role        string
	RequireUser bool
}

// WithAuth wraps a single handler with role guards.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	role := strings.ToLower(strings.TrimSpace(opts.Role))
	if role == "" {
		role = AuthRoleAny
	}
	requireUser := opts.RequireUser || role != AuthRoleAny

	return func(c *fiber.Ctx) error {
		if requireUser && c.Locals(LocalUserID) == nil {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}
		if role != AuthRoleAny && roleFromLocals(c) != role {
			return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
		}
		return handler(c)
	}
}
