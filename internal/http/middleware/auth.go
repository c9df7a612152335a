package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"smartstudy/internal/apperror"
	"smartstudy/internal/auth"
	"smartstudy/internal/model"
)

// IdentityLocalKey is the key used to store the authenticated caller in Fiber's context locals.
const IdentityLocalKey = "identity"

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

// RoleResolver loads a user's current role. Returning an error rejects the request.
type RoleResolver interface {
	CurrentRole(ctx context.Context, userID string) (model.Role, error)
}

// AuthGuard authenticates requests and enforces the admin-only rule.
type AuthGuard struct {
	tokens TokenVerifier
	roles  RoleResolver
}

// NewAuthGuard builds a guard. When roles is non-nil the role claimed by the token is
// replaced with the stored one on every request, so demoted or deleted users lose access
// before their token expires.
func NewAuthGuard(tokens TokenVerifier, roles RoleResolver) *AuthGuard {
	return &AuthGuard{tokens: tokens, roles: roles}
}

// Authenticate rejects requests without a valid bearer token and stores the caller's identity.
func (g *AuthGuard) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := g.identify(c)
		if err != nil {
			return err
		}
		c.Locals(IdentityLocalKey, id)
		return c.Next()
	}
}

// AdminOnly requires an admin identity. It authenticates first when no earlier handler did.
func (g *AuthGuard) AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := IdentityFrom(c)
		if !ok {
			var err error
			if id, err = g.identify(c); err != nil {
				return err
			}
			c.Locals(IdentityLocalKey, id)
		}
		if !id.IsAdmin() {
			return apperror.Forbidden("admin access required")
		}
		return c.Next()
	}
}

func (g *AuthGuard) identify(c *fiber.Ctx) (*auth.Identity, error) {
	token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return nil, apperror.Unauthenticated("missing bearer token")
	}
	id, err := g.tokens.Verify(token)
	if err != nil {
		return nil, apperror.Unauthenticated("invalid or expired token")
	}
	if g.roles != nil {
		role, err := g.roles.CurrentRole(c.UserContext(), id.UserID)
		if err != nil {
			return nil, apperror.Unauthenticated("account no longer exists")
		}
		id.Role = role
	}
	return id, nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// IdentityFrom returns the identity stored by Authenticate or AdminOnly.
func IdentityFrom(c *fiber.Ctx) (*auth.Identity, bool) {
	id, ok := c.Locals(IdentityLocalKey).(*auth.Identity)
	return id, ok && id != nil
}
