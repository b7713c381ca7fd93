package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gas-utility-service/internal/domain"
	apperrors "github.com/spec-kit/gas-utility-service/pkg/util/errorutil"
)

// RequireAuthenticated ensures any logged-in account is calling.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("Authentication credentials were not provided.")
		}
		return c.Next()
	}
}

// RequireRole ensures the caller holds at least the given role.
func RequireRole(min domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("Authentication credentials were not provided.")
		}
		if !principal.Role.AtLeast(min) {
			return apperrors.NewForbidden("You do not have permission to perform this action.")
		}
		return c.Next()
	}
}
