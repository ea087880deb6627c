package middleware

import (
	"github.com/barangay-konek/portal-api/internal/config"
	"github.com/barangay-konek/portal-api/internal/services"
	"github.com/barangay-konek/portal-api/internal/types"
	"github.com/gofiber/fiber/v2"
)

// CallerKey is the fiber.Ctx Locals key the resolved caller is stored under.
const CallerKey = "caller"

var authConfig *config.Config

// SetupAuth stores the configuration used to lazily initialize the
// Authorizer client on the first authenticated request.
func SetupAuth(cfg *config.Config) {
	authConfig = cfg
}

// AuthAdmin validates that the request has admin role authorization
func AuthAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authorize(c, []string{"admin"}, "portal.authorization.admin")
	}
}

// AuthUser validates that the request has user role authorization
func AuthUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authorize(c, []string{"user"}, "portal.authorization.user")
	}
}

// authorize performs the authorization check
func authorize(c *fiber.Ctx, roles []string, errorType string) error {
	if !services.IsAuthorizerInitialized() {
		if authConfig == nil {
			return types.Unauthorized(errorType, "authorization not configured")
		}
		if err := services.InitAuthorizer(authConfig, c.Protocol(), c.Hostname()); err != nil {
			return types.Unauthorized(errorType, "Authorizer unavailable: %v", err)
		}
	}

	session := c.Cookies("cookie_session")
	if session == "" {
		return types.Unauthorized(errorType, "Authorizer cookie %q not found", "cookie_session")
	}

	caller, err := services.ValidateSession(session, roles)
	if err != nil {
		return types.Unauthorized(errorType, "Invalid session: %v", err)
	}

	c.Locals(CallerKey, caller)

	return c.Next()
}
