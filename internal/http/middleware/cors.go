package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"smartstudy/internal/config"
)

// CORS allows the configured origins plus any origin whose host ends with AllowSuffix
// (preview deployments). Credentials are only allowed with an explicit origin list;
// without one every origin is accepted anonymously. config.Validate rejects a suffix
// with no origin list.
func CORS(cfg config.CORSConfig) fiber.Handler {
	c := cors.Config{
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization," + RequestIDHeader,
		ExposeHeaders: RequestIDHeader,
	}
	if len(cfg.AllowedOrigins) == 0 {
		c.AllowOrigins = "*"
		return cors.New(c)
	}

	c.AllowOrigins = strings.Join(cfg.AllowedOrigins, ",")
	c.AllowCredentials = true
	if suffix := cfg.AllowSuffix; suffix != "" {
		c.AllowOriginsFunc = func(origin string) bool {
			return strings.HasPrefix(origin, "https://") && strings.HasSuffix(origin, suffix)
		}
	}
	return cors.New(c)
}
