package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"autosalon/internal/domain"
	"autosalon/internal/log"
	"autosalon/internal/services"
	"autosalon/internal/validate"
)

// RecordHandler serves list/get/create/update/delete for one record kind.
// Noun and Plural are lower-case ("car", "cars") and shape both the
// response messages and the log actions.
type RecordHandler[T any] struct {
	Svc    *services.RecordService[T]
	Noun   string
	Plural string
}

func NewCarHandler(svc *services.CarService) *RecordHandler[domain.Car] {
	return &RecordHandler[domain.Car]{Svc: svc, Noun: "car", Plural: "cars"}
}

func NewCustomerHandler(svc *services.CustomerService) *RecordHandler[domain.Customer] {
	return &RecordHandler[domain.Customer]{Svc: svc, Noun: "customer", Plural: "customers"}
}

func (h *RecordHandler[T]) notFound() string {
	return strings.ToUpper(h.Noun[:1]) + h.Noun[1:] + " not found"
}

func (h *RecordHandler[T]) done(verb string) string {
	return strings.ToUpper(h.Noun[:1]) + h.Noun[1:] + " " + verb + " successfully"
}

// storeFail renders a service error. NotFound and validation are client
// errors; anything else is logged and reported as 500 with msg.
func (h *RecordHandler[T]) storeFail(c *fiber.Ctx, op, msg string, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": h.notFound()})
	case errors.Is(err, domain.ErrValidation):
		return fail(c, fiber.StatusBadRequest, msg, err)
	}
	c.Status(fiber.StatusInternalServerError)
	log.Error(c, h.Plural+"."+op+".error", err, nil)
	return fail(c, fiber.StatusInternalServerError, msg, err)
}

func (h *RecordHandler[T]) badID(c *fiber.Ctx) error {
	return fail(c, fiber.StatusBadRequest, "Invalid "+h.Noun+" id",
		domain.NewValidationError("id", "must be a positive integer"))
}

func (h *RecordHandler[T]) List(c *fiber.Ctx) error {
	recs, err := h.Svc.List(c.UserContext())
	if err != nil {
		return h.storeFail(c, "list", "Failed to fetch "+h.Plural, err)
	}
	return c.JSON(recs)
}

func (h *RecordHandler[T]) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return h.badID(c)
	}
	rec, err := h.Svc.Get(c.UserContext(), id)
	if err != nil {
		return h.storeFail(c, "get", "Failed to fetch "+h.Noun, err)
	}
	return c.JSON(rec)
}

func (h *RecordHandler[T]) Create(c *fiber.Ctx) error {
	var rec T
	if err := c.BodyParser(&rec); err != nil {
		return fail(c, fiber.StatusBadRequest, "Failed to add "+h.Noun, errBadBody)
	}
	id, err := h.Svc.Create(c.UserContext(), rec)
	if err != nil {
		return h.storeFail(c, "create", "Failed to add "+h.Noun, err)
	}
	c.Status(fiber.StatusCreated)
	log.Audit(c, h.Plural+".create", map[string]any{"id": id})
	return c.JSON(fiber.Map{"id": id})
}

func (h *RecordHandler[T]) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return h.badID(c)
	}
	var rec T
	if err := c.BodyParser(&rec); err != nil {
		return fail(c, fiber.StatusBadRequest, "Failed to update "+h.Noun, errBadBody)
	}
	if err := h.Svc.Update(c.UserContext(), id, rec); err != nil {
		return h.storeFail(c, "update", "Failed to update "+h.Noun, err)
	}
	log.Audit(c, h.Plural+".update", map[string]any{"id": id})
	return c.JSON(fiber.Map{"message": h.done("updated")})
}

func (h *RecordHandler[T]) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return h.badID(c)
	}
	if err := h.Svc.Delete(c.UserContext(), id); err != nil {
		return h.storeFail(c, "delete", "Failed to delete "+h.Noun, err)
	}
	log.Audit(c, h.Plural+".delete", map[string]any{"id": id})
	return c.JSON(fiber.Map{"message": h.done("deleted")})
}
