package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"smartstudy/internal/apperror"
	"smartstudy/internal/model"
)

// SettingsProvider returns the current site settings.
type SettingsProvider interface {
	Get(ctx context.Context) (*model.Settings, error)
}

// Maintenance answers 503 MAINTENANCE while maintenance mode is on. Admins and
// requests whose path starts with one of the exempt prefixes pass through.
func Maintenance(settings SettingsProvider, guard *AuthGuard, exempt ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, prefix := range exempt {
			if strings.HasPrefix(c.Path(), prefix) {
				return c.Next()
			}
		}

		s, err := settings.Get(c.UserContext())
		if err != nil {
			return err
		}
		if !s.MaintenanceMode {
			return c.Next()
		}

		if id, err := guard.identify(c); err == nil && id.IsAdmin() {
			c.Locals(IdentityLocalKey, id)
			return c.Next()
		}
		return apperror.Unavailable(s.SiteName + " is under maintenance, please try again later").WithCode("MAINTENANCE")
	}
}

// RequireModule answers 503 MODULE_DISABLED when the named feature module is switched off.
func RequireModule(settings SettingsProvider, module string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := settings.Get(c.UserContext())
		if err != nil {
			return err
		}
		if !s.ModuleEnabled(module) {
			return apperror.Unavailable("the " + module + " module is disabled").WithCode("MODULE_DISABLED")
		}
		return c.Next()
	}
}
