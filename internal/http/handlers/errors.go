package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"watchflip/internal/analyzer"
	"watchflip/internal/export"
	applog "watchflip/internal/log"
	"watchflip/internal/repos"
	"watchflip/internal/scraper"
	"watchflip/internal/validate"
)

const manualHint = "Enter the listing details manually."

// fail maps service errors onto a JSON response without leaking internals.
func fail(c *fiber.Ctx, action string, err error) error {
	var verr *validate.Error
	var rerr *export.RowError
	switch {
	case errors.As(err, &verr):
		applog.Security(c, "validation.fail", map[string]any{"action": action, "details": verr.Violations})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation failed", "details": verr.Violations})
	case errors.As(err, &rerr), errors.Is(err, export.ErrEmptyImport):
		applog.Security(c, "validation.fail", map[string]any{"action": action, "reason": err.Error()})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, scraper.ErrInvalidURL):
		applog.Security(c, "validation.fail", map[string]any{"action": action, "field": "url"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "enter a valid eBay listing URL"})
	case errors.Is(err, repos.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, scraper.ErrUnavailable), errors.Is(err, analyzer.ErrUnavailable):
		applog.Warn(c, action+".unavailable", err, nil)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error(), "hint": manualHint})
	case errors.Is(err, context.DeadlineExceeded):
		applog.Error(c, action+".timeout", err, nil)
		return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{"error": "upstream timed out", "hint": manualHint})
	}
	applog.Error(c, action+".error", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}

func badRequest(c *fiber.Ctx, field, msg string) error {
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func isNotFound(err error) bool { return errors.Is(err, repos.ErrNotFound) }

func isValidation(err error) bool {
	var verr *validate.Error
	return errors.As(err, &verr)
}
