package handlers

import (
	"github.com/gofiber/fiber/v2"

	"watchflip/internal/domain"
	applog "watchflip/internal/log"
	"watchflip/internal/services"
	"watchflip/internal/validate"
)

const maxBulk = 500

type BulkHandler struct {
	Bulk *services.BulkService
}

func bulkIDs(c *fiber.Ctx, raw []string) ([]string, bool) {
	ids := validate.IDs(raw)
	if len(ids) == 0 || len(ids) != len(raw) || len(ids) > maxBulk {
		applog.Security(c, "validation.fail", map[string]any{"field": "ids", "count": len(raw)})
		return nil, false
	}
	return ids, true
}

func (h *BulkHandler) Status(c *fiber.Ctx) error {
	var body struct {
		idsBody
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	ids, ok := bulkIDs(c, body.IDs)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "ids must be 1-500 distinct valid ids"})
	}
	st, ok := domain.ParseStatus(body.Status)
	if !ok {
		return fail(c, "bulk.status", validate.Violations{"status": validate.CodeInvalidStatus}.Err())
	}
	res, err := h.Bulk.UpdateStatus(c.UserContext(), ids, st)
	if err != nil {
		return fail(c, "bulk.status", err)
	}
	applog.Audit(c, "bulk.status", map[string]any{"status": string(st), "succeeded": len(res.Succeeded), "failed": len(res.Failed)})
	return bulkJSON(c, res)
}

func (h *BulkHandler) Delete(c *fiber.Ctx) error {
	var body idsBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	ids, ok := bulkIDs(c, body.IDs)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "ids must be 1-500 distinct valid ids"})
	}
	res := h.Bulk.Delete(c.UserContext(), ids)
	applog.Audit(c, "bulk.delete", map[string]any{"succeeded": len(res.Succeeded), "failed": len(res.Failed)})
	return bulkJSON(c, res)
}

func (h *BulkHandler) Edit(c *fiber.Ctx) error {
	var body struct {
		idsBody
		Patch domain.BulkPatch `json:"patch"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	ids, ok := bulkIDs(c, body.IDs)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "ids must be 1-500 distinct valid ids"})
	}
	res, err := h.Bulk.Edit(c.UserContext(), ids, body.Patch)
	if err != nil {
		return fail(c, "bulk.edit", err)
	}
	applog.Audit(c, "bulk.edit", map[string]any{"succeeded": len(res.Succeeded), "failed": len(res.Failed)})
	return bulkJSON(c, res)
}
