package handlers

import (
	"github.com/gofiber/fiber/v2"

	"watchflip/internal/domain"
	applog "watchflip/internal/log"
	"watchflip/internal/services"
	"watchflip/internal/validate"
)

type PrefsHandler struct {
	Prefs   *services.PrefsService
	Watches *services.WatchService
}

// pathID returns the optional :id segment; ok is false when it is present
// but malformed.
func pathID(c *fiber.Ctx) (string, bool) {
	raw := c.Params("id")
	if raw == "" {
		return "", true
	}
	return validate.ID(raw)
}

func (h *PrefsHandler) Searches(c *fiber.Ctx) error {
	out, err := h.Prefs.Searches(c.UserContext())
	if err != nil {
		return fail(c, "prefs.searches", err)
	}
	return c.JSON(out)
}

func (h *PrefsHandler) SaveSearch(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "id", "invalid id")
	}
	var in domain.SavedSearch
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	in.ID = id
	out, err := h.Prefs.SaveSearch(c.UserContext(), in)
	if err != nil {
		return fail(c, "prefs.search.save", err)
	}
	applog.Audit(c, "prefs.search.save", map[string]any{"id": out.ID})
	return c.JSON(out)
}

func (h *PrefsHandler) DeleteSearch(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid id")
	}
	if err := h.Prefs.DeleteSearch(c.UserContext(), id); err != nil {
		return fail(c, "prefs.search.delete", err)
	}
	applog.Audit(c, "prefs.search.delete", map[string]any{"id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *PrefsHandler) Templates(c *fiber.Ctx) error {
	out, err := h.Prefs.Templates(c.UserContext())
	if err != nil {
		return fail(c, "prefs.templates", err)
	}
	return c.JSON(out)
}

func (h *PrefsHandler) SaveTemplate(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "id", "invalid id")
	}
	var in domain.Template
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	in.ID = id
	out, err := h.Prefs.SaveTemplate(c.UserContext(), in)
	if err != nil {
		return fail(c, "prefs.template.save", err)
	}
	applog.Audit(c, "prefs.template.save", map[string]any{"id": out.ID})
	return c.JSON(out)
}

func (h *PrefsHandler) DeleteTemplate(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid id")
	}
	if err := h.Prefs.DeleteTemplate(c.UserContext(), id); err != nil {
		return fail(c, "prefs.template.delete", err)
	}
	applog.Audit(c, "prefs.template.delete", map[string]any{"id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *PrefsHandler) Alerts(c *fiber.Ctx) error {
	out, err := h.Prefs.Alerts(c.UserContext())
	if err != nil {
		return fail(c, "prefs.alerts", err)
	}
	return c.JSON(out)
}

func (h *PrefsHandler) SaveAlert(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "id", "invalid id")
	}
	var in domain.PriceAlert
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	in.ID = id
	if in.WatchID != "" {
		if _, err := h.Watches.Get(c.UserContext(), in.WatchID); err != nil {
			return fail(c, "prefs.alert.save", err)
		}
	}
	out, err := h.Prefs.SaveAlert(c.UserContext(), in)
	if err != nil {
		return fail(c, "prefs.alert.save", err)
	}
	applog.Audit(c, "prefs.alert.save", map[string]any{"id": out.ID, "watch_id": out.WatchID})
	return c.JSON(out)
}

func (h *PrefsHandler) DeleteAlert(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid id")
	}
	if err := h.Prefs.DeleteAlert(c.UserContext(), id); err != nil {
		return fail(c, "prefs.alert.delete", err)
	}
	applog.Audit(c, "prefs.alert.delete", map[string]any{"id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *PrefsHandler) CheckAlerts(c *fiber.Ctx) error {
	ws, err := h.Watches.List(c.UserContext())
	if err != nil {
		return fail(c, "prefs.alerts.check", err)
	}
	hits, err := h.Prefs.CheckAlerts(c.UserContext(), ws)
	if err != nil {
		return fail(c, "prefs.alerts.check", err)
	}
	return c.JSON(hits)
}
