package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"watchflip/internal/analyzer"
	"watchflip/internal/domain"
	applog "watchflip/internal/log"
	"watchflip/internal/scraper"
	"watchflip/internal/services"
)

type ListingHandler struct {
	Listings *services.ListingService
}

type urlBody struct {
	URL string `json:"url"`
}

func (h *ListingHandler) listingURL(c *fiber.Ctx) (string, bool) {
	var body urlBody
	if err := c.BodyParser(&body); err != nil {
		return "", false
	}
	u := strings.TrimSpace(body.URL)
	return u, u != "" && len(u) <= 2048
}

// upstream maps scrape failures that are neither validation nor disabled
// collaborators to 502.
func upstream(c *fiber.Ctx, action string, err error) error {
	if errors.Is(err, scraper.ErrInvalidURL) || errors.Is(err, scraper.ErrUnavailable) {
		return fail(c, action, err)
	}
	applog.Error(c, action+".error", err, nil)
	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "could not fetch the listing", "hint": manualHint})
}

func (h *ListingHandler) Scrape(c *fiber.Ctx) error {
	u, ok := h.listingURL(c)
	if !ok {
		return badRequest(c, "url", "enter a valid eBay listing URL")
	}
	l, err := h.Listings.Scrape(c.UserContext(), u)
	if err != nil {
		return upstream(c, "listing.scrape", err)
	}
	return c.JSON(l)
}

func (h *ListingHandler) Analyze(c *fiber.Ctx) error {
	var l domain.ListingSummary
	if err := c.BodyParser(&l); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	if strings.TrimSpace(l.Title) == "" && strings.TrimSpace(l.Description) == "" {
		return badRequest(c, "title", "title or description is required")
	}
	a, err := h.Listings.Analyze(c.UserContext(), l)
	if errors.Is(err, analyzer.ErrUnavailable) {
		applog.Warn(c, "listing.analyze.unavailable", err, nil)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error(), "hint": manualHint, "analysis": a})
	}
	if err != nil {
		return fail(c, "listing.analyze", err)
	}
	return c.JSON(a)
}

func (h *ListingHandler) Draft(c *fiber.Ctx) error {
	u, ok := h.listingURL(c)
	if !ok {
		return badRequest(c, "url", "enter a valid eBay listing URL")
	}
	d, err := h.Listings.Draft(c.UserContext(), u)
	if err != nil {
		return upstream(c, "listing.draft", err)
	}
	return c.JSON(d)
}
