package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"autosalon/internal/domain"
	applog "autosalon/internal/log"
	"autosalon/internal/metrics"
	"autosalon/internal/services"
)

const (
	localClaims = "claims"
	localUserID = "userId"
)

// bearerToken extracts the token of an "Authorization: Bearer" header. A
// missing header is ErrMissingToken; any other shape is ErrInvalidToken.
func bearerToken(c *fiber.Ctx) (string, error) {
	h := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if h == "" {
		return "", fmt.Errorf("%w: %w", domain.ErrUnauthenticated, domain.ErrMissingToken)
	}
	scheme, tok, ok := strings.Cut(h, " ")
	tok = strings.TrimSpace(tok)
	if !ok || !strings.EqualFold(scheme, "Bearer") || tok == "" {
		return "", fmt.Errorf("%w: %w", domain.ErrUnauthenticated, domain.ErrInvalidToken)
	}
	return tok, nil
}

// authenticate verifies the request's bearer token.
func authenticate(c *fiber.Ctx, auth *services.AuthService) (domain.Claims, error) {
	tok, err := bearerToken(c)
	if err != nil {
		return domain.Claims{}, err
	}
	return auth.VerifyRequest(tok)
}

// RequireToken rejects requests without a valid bearer token: 401 when the
// header is missing, 403 when the token does not verify.
func RequireToken(auth *services.AuthService, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := authenticate(c, auth)
		if err != nil {
			if errors.Is(err, domain.ErrMissingToken) {
				m.AuthEvent("verify", "missing")
				c.Status(fiber.StatusUnauthorized)
				applog.Security(c, "auth.token.missing", nil)
				return c.JSON(fiber.Map{"error": "No token provided"})
			}
			m.AuthEvent("verify", "invalid")
			c.Status(fiber.StatusForbidden)
			applog.Security(c, "auth.token.invalid", nil)
			return c.JSON(fiber.Map{"error": "Invalid token"})
		}
		m.AuthEvent("verify", "ok")
		c.Locals(localClaims, claims)
		c.Locals(localUserID, claims.UserID)
		return c.Next()
	}
}

// RequireRole must run after RequireToken.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(localClaims).(domain.Claims)
		if !ok || claims.Role != role {
			c.Status(fiber.StatusForbidden)
			applog.Security(c, "access.denied."+role, nil)
			return c.JSON(fiber.Map{"error": "Access denied"})
		}
		return c.Next()
	}
}
