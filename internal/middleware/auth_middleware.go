package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/arhammunir1104/ecom-sub001/internal/identity"
	"github.com/arhammunir1104/ecom-sub001/internal/models"
	"github.com/arhammunir1104/ecom-sub001/internal/services"
)

// actorKey is the fiber.Ctx locals key the resolved actor is stored under.
const actorKey = "actor"

// HeaderAuthUID is the legacy identity-hint header: clients that
// authenticated against the external provider but hold no session token
// send their UID here.
const HeaderAuthUID = "X-Auth-UID"

// ResolveIdentity derives the acting identity for every request from
// whatever hints it carries: a bearer session token, the auth-UID header, or
// nothing. It never rejects; an unresolvable identity degrades to guest so
// that browsing and guest checkout keep working.
func ResolveIdentity(authService *services.AuthService, resolver *identity.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var hints identity.Hints

		if authHeader := c.Get("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				if claims, err := authService.ValidateToken(parts[1]); err == nil {
					if id, ok := claims["user_id"].(float64); ok {
						hints.NumericID = models.FormatID(uint(id))
					}
				}
			}
		}
		if uid := c.Get(HeaderAuthUID); uid != "" {
			hints.AuthUID = uid
		}

		actor := resolver.ActorFromHints(c.UserContext(), hints)
		c.Locals(actorKey, actor)
		return c.Next()
	}
}

// Actor returns the acting identity resolved for the request. Requests that
// bypassed ResolveIdentity count as guests.
func Actor(c *fiber.Ctx) identity.Actor {
	if actor, ok := c.Locals(actorKey).(identity.Actor); ok {
		return actor
	}
	return identity.Actor{Kind: identity.Guest}
}

// RequireAuth rejects requests whose actor has no canonical record.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !Actor(c).Authenticated() {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}
		return c.Next()
	}
}

// RequireAdmin rejects requests without admin authority. Either store
// granting the role is sufficient; the resolver handles convergence.
func RequireAdmin(resolver *identity.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := Actor(c)
		if actor.Kind == identity.Guest {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}
		if !resolver.IsAdmin(c.UserContext(), actor) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Admin privileges required",
			})
		}
		return c.Next()
	}
}
