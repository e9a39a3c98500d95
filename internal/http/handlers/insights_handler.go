package handlers

import (
	"github.com/gofiber/fiber/v2"

	"watchflip/internal/metrics"
	"watchflip/internal/quality"
	"watchflip/internal/query"
	"watchflip/internal/services"
)

// InsightsHandler serves portfolio metrics and data-quality reports over
// the (optionally filtered) inventory.
type InsightsHandler struct {
	Watches *services.WatchService
}

func (h *InsightsHandler) Summary(c *fiber.Ctx) error {
	p, err := parseList(c)
	if err != nil {
		return fail(c, "metrics.summary", err)
	}
	ws, err := h.Watches.List(c.UserContext())
	if err != nil {
		return fail(c, "metrics.summary", err)
	}
	return c.JSON(metrics.Summarize(query.Filter(ws, p.Criteria), metrics.ParseBasis(c.Query("basis"))))
}

func (h *InsightsHandler) Brands(c *fiber.Ctx) error {
	p, err := parseList(c)
	if err != nil {
		return fail(c, "metrics.brands", err)
	}
	ws, err := h.Watches.List(c.UserContext())
	if err != nil {
		return fail(c, "metrics.brands", err)
	}
	out := metrics.ByBrand(query.Filter(ws, p.Criteria), metrics.ParseBasis(c.Query("basis")))
	if out == nil {
		out = []metrics.BrandStats{}
	}
	return c.JSON(out)
}

func (h *InsightsHandler) Duplicates(c *fiber.Ctx) error {
	ws, err := h.Watches.List(c.UserContext())
	if err != nil {
		return fail(c, "quality.duplicates", err)
	}
	out := quality.Duplicates(ws)
	if out == nil {
		out = []quality.DuplicateGroup{}
	}
	return c.JSON(out)
}

func (h *InsightsHandler) Issues(c *fiber.Ctx) error {
	ws, err := h.Watches.List(c.UserContext())
	if err != nil {
		return fail(c, "quality.issues", err)
	}
	out := quality.Check(ws)
	if out == nil {
		out = []quality.Finding{}
	}
	return c.JSON(out)
}
