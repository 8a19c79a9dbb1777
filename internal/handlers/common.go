package handlers

import (
	"errors"
	"log"
	"time"

	"taskmaster/internal/services"

	"github.com/gofiber/fiber/v2"
)

// respondError maps domain errors onto HTTP responses. Validation and
// conflict errors are client errors; a conflict carries the existing session
// so the client can resume it. Anything unclassified is a server error.
func respondError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	var conflictErr *services.ConflictError
	var notFoundErr *services.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": validationErr.Message,
		})
	case errors.As(err, &conflictErr):
		resp := fiber.Map{"message": conflictErr.Message}
		if conflictErr.Session != nil {
			resp["session"] = conflictErr.Session
		}
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	case errors.As(err, &notFoundErr):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": notFoundErr.Error(),
		})
	default:
		log.Printf("❌ %s %s failed: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}
}

// parseDate accepts RFC3339 timestamps or bare YYYY-MM-DD dates
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			parsed = parsed.UTC()
			return &parsed, nil
		}
	}
	return nil, &services.ValidationError{Message: "Invalid date format"}
}
