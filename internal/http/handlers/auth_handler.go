package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"autosalon/internal/domain"
	"autosalon/internal/log"
	"autosalon/internal/metrics"
	"autosalon/internal/services"
	"autosalon/internal/validate"
)

type AuthHandler struct {
	Auth    *services.AuthService
	Metrics *metrics.Metrics
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in domain.Registration
	if err := c.BodyParser(&in); err != nil {
		h.Metrics.AuthEvent("register", "invalid")
		return fail(c, fiber.StatusBadRequest, "Registration failed", errBadBody)
	}

	// Only an administrator may create another administrator.
	if in.Role == domain.RoleAdmin {
		claims, err := authenticate(c, h.Auth)
		if err != nil || !claims.IsAdmin() {
			h.Metrics.AuthEvent("register", "forbidden")
			c.Status(fiber.StatusForbidden)
			log.Security(c, "auth.register.admin_denied", map[string]any{"email": validate.Email(in.Email)})
			return fail(c, fiber.StatusForbidden, "Registration failed", domain.ErrForbidden)
		}
		c.Locals(localUserID, claims.UserID)
	}

	id, err := h.Auth.Register(c.UserContext(), in)
	if err != nil {
		status := statusFor(err)
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail), errors.Is(err, domain.ErrDuplicateUsername):
			h.Metrics.AuthEvent("register", "duplicate")
			c.Status(fiber.StatusBadRequest)
			log.Info(c, "auth.register.duplicate", map[string]any{"email": validate.Email(in.Email)})
		case status == fiber.StatusBadRequest:
			h.Metrics.AuthEvent("register", "invalid")
		default:
			h.Metrics.AuthEvent("register", "error")
			c.Status(fiber.StatusInternalServerError)
			log.Error(c, "auth.register.error", err, nil)
			// Store failures are not the client's fault.
			return fail(c, fiber.StatusInternalServerError, "Registration failed", err)
		}
		return fail(c, fiber.StatusBadRequest, "Registration failed", err)
	}

	h.Metrics.AuthEvent("register", "ok")
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	c.Status(fiber.StatusCreated)
	log.Audit(c, "auth.register.success", map[string]any{"new_user_id": id, "role": role})
	return c.JSON(fiber.Map{
		"message": "User registered successfully",
		"userId":  id,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in loginRequest
	if err := c.BodyParser(&in); err != nil {
		h.Metrics.AuthEvent("login", "invalid")
		return fail(c, fiber.StatusBadRequest, "Login failed", errBadBody)
	}
	email := validate.Email(in.Email)

	token, err := h.Auth.Login(c.UserContext(), email, in.Password)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.Status(fiber.StatusUnauthorized)
		if errors.Is(err, domain.ErrInvalidDigest) {
			log.Error(c, "auth.login.bad_digest", err, map[string]any{"email": email})
		}
		h.Metrics.AuthEvent("login", "invalid_credentials")
		log.Security(c, "auth.login.fail", map[string]any{"email": email})
		return c.JSON(fiber.Map{"error": "Invalid credentials"})
	case errors.Is(err, domain.ErrValidation):
		h.Metrics.AuthEvent("login", "invalid")
		return fail(c, fiber.StatusBadRequest, "Login failed", err)
	default:
		h.Metrics.AuthEvent("login", "error")
		c.Status(fiber.StatusInternalServerError)
		log.Error(c, "auth.login.error", err, map[string]any{"email": email})
		return fail(c, fiber.StatusInternalServerError, "Login failed", err)
	}

	h.Metrics.AuthEvent("login", "ok")
	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.JSON(fiber.Map{"message": "Login successful", "token": token})
}

// Me echoes the identity of the verified token. Mounted behind RequireToken.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	claims, _ := c.Locals(localClaims).(domain.Claims)
	return c.JSON(fiber.Map{"user": claims})
}
