package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/vietscribe/vietscribe/app/models"
	"github.com/vietscribe/vietscribe/app/repository"
	"github.com/vietscribe/vietscribe/internal/pkg/auth"
	"github.com/vietscribe/vietscribe/internal/pkg/usercontext"
)

// BearerAuth verifies the Authorization header against the identity provider
// and resolves the token subject to a local user, creating one on first
// login. The user context is stored on the request for downstream handlers.
func BearerAuth(verifier *auth.Verifier, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			return unauthorized(c, "missing bearer token")
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			return unauthorized(c, "invalid token")
		}

		user, err := users.GetOrCreateBySubject(claims.Subject, claims.Email, claims.Name)
		if err != nil {
			log.Printf("auth: user lookup failed subject=%s: %v", claims.Subject, err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error":   "service_unavailable",
				"message": "user lookup failed",
			})
		}
		if user.Status == models.STATUS_DISABLED {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "forbidden",
				"message": "account disabled",
			})
		}

		usercontext.Set(c, usercontext.UserContext{
			UserID:     user.ID,
			Subject:    user.Subject,
			Email:      user.Email,
			IsLoggedIn: true,
			IsAdmin:    user.Role == models.ROLE_ADMIN,
		})
		return c.Next()
	}
}

func extractBearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   "unauthorized",
		"message": message,
	})
}
