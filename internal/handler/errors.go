package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/blueprint-intel/internal/port"
)

const genericErrorMessage = "Something went wrong, please try again."

// writeError maps domain errors to HTTP statuses. Unknown errors are logged
// and reported with a generic message so internals never reach the client.
func writeError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, port.ErrBlueprintNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "blueprint not found"})
	case errors.Is(err, port.ErrEmptyMessage):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "message is required"})
	case errors.Is(err, port.ErrInvalidSection),
		errors.Is(err, port.ErrFieldPathNotFound),
		errors.Is(err, port.ErrInvalidEdit):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	slog.Error("request failed", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": genericErrorMessage})
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
