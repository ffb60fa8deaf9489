package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"autosalon/internal/domain"
)

// statusFor maps the domain error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrDuplicateEmail),
		errors.Is(err, domain.ErrDuplicateUsername):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrMissingToken), errors.Is(err, domain.ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

var publicErrors = []error{
	domain.ErrDuplicateEmail,
	domain.ErrDuplicateUsername,
	domain.ErrInvalidCredentials,
	domain.ErrMissingToken,
	domain.ErrInvalidToken,
	domain.ErrForbidden,
	domain.ErrNotFound,
	domain.ErrStoreUnavailable,
}

// details is the client-safe description of err: field messages for
// validation failures, otherwise the taxonomy message. Driver text never
// reaches the client.
func details(err error) any {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	for _, pub := range publicErrors {
		if errors.Is(err, pub) {
			return pub.Error()
		}
	}
	return "internal error"
}

func fail(c *fiber.Ctx, status int, msg string, err error) error {
	body := fiber.Map{"error": msg}
	if err != nil {
		body["details"] = details(err)
	}
	return c.Status(status).JSON(body)
}

var errBadBody = domain.NewValidationError("body", "must be a valid JSON object")
