package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"watchflip/internal/domain"
	"watchflip/internal/export"
	applog "watchflip/internal/log"
	"watchflip/internal/query"
	"watchflip/internal/services"
	"watchflip/internal/validate"
)

const maxUpload = 5<<20 + 1

type WatchHandler struct {
	Watches *services.WatchService
}

func watchID(c *fiber.Ctx) (string, bool) {
	return validate.ID(c.Params("id"))
}

func (h *WatchHandler) List(c *fiber.Ctx) error {
	p, err := parseList(c)
	if err != nil {
		return fail(c, "watch.list", err)
	}
	ws, err := h.Watches.List(c.UserContext())
	if err != nil {
		return fail(c, "watch.list", err)
	}
	return c.JSON(query.Run(ws, p.Criteria, p.Sort, p.Page, p.Size))
}

func (h *WatchHandler) Get(c *fiber.Ctx) error {
	id, ok := watchID(c)
	if !ok {
		return badRequest(c, "id", "invalid id")
	}
	w, err := h.Watches.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, "watch.get", err)
	}
	return c.JSON(w)
}

func (h *WatchHandler) Create(c *fiber.Ctx) error {
	var in domain.WatchInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	w, err := h.Watches.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, "watch.create", err)
	}
	applog.Audit(c, "watch.create", map[string]any{"watch_id": w.ID, "brand": w.Brand})
	return c.Status(fiber.StatusCreated).JSON(w)
}

func (h *WatchHandler) Update(c *fiber.Ctx) error {
	id, ok := watchID(c)
	if !ok {
		return badRequest(c, "id", "invalid id")
	}
	var in domain.WatchInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	w, err := h.Watches.Update(c.UserContext(), id, in)
	if err != nil {
		return fail(c, "watch.update", err)
	}
	applog.Audit(c, "watch.update", map[string]any{"watch_id": id})
	return c.JSON(w)
}

func (h *WatchHandler) Delete(c *fiber.Ctx) error {
	id, ok := watchID(c)
	if !ok {
		return badRequest(c, "id", "invalid id")
	}
	if err := h.Watches.Delete(c.UserContext(), id); err != nil {
		return fail(c, "watch.delete", err)
	}
	applog.Audit(c, "watch.delete", map[string]any{"watch_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *WatchHandler) SetStatus(c *fiber.Ctx) error {
	id, ok := watchID(c)
	if !ok {
		return badRequest(c, "id", "invalid id")
	}
	var body struct {
		Status    string           `json:"status"`
		SoldPrice *decimal.Decimal `json:"soldPrice"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	st, ok := domain.ParseStatus(body.Status)
	if !ok {
		return fail(c, "watch.status", validate.Violations{"status": validate.CodeInvalidStatus}.Err())
	}
	w, err := h.Watches.Update(c.UserContext(), id, domain.WatchInput{Status: &st, SoldPrice: body.SoldPrice})
	if err != nil {
		return fail(c, "watch.status", err)
	}
	applog.Audit(c, "watch.status", map[string]any{"watch_id": id, "status": string(st)})
	return c.JSON(w)
}

func (h *WatchHandler) ToggleFavorite(c *fiber.Ctx) error {
	id, ok := watchID(c)
	if !ok {
		return badRequest(c, "id", "invalid id")
	}
	w, err := h.Watches.ToggleFavorite(c.UserContext(), id)
	if err != nil {
		return fail(c, "watch.favorite", err)
	}
	applog.Audit(c, "watch.favorite", map[string]any{"watch_id": id, "favorite": w.IsFavorite})
	return c.JSON(w)
}

func (h *WatchHandler) UploadImage(c *fiber.Ctx) error {
	id, ok := watchID(c)
	if !ok {
		return badRequest(c, "id", "invalid id")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file", "no file uploaded")
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, "watch.image", err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUpload))
	if err != nil {
		return fail(c, "watch.image", err)
	}
	url, err := h.Watches.AddImage(c.UserContext(), id, fh.Filename, data)
	if err != nil {
		return fail(c, "watch.image", err)
	}
	applog.Audit(c, "watch.image.add", map[string]any{"watch_id": id, "url": url})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"imageUrl": url})
}

func (h *WatchHandler) DeleteImage(c *fiber.Ctx) error {
	id, ok := watchID(c)
	if !ok {
		return badRequest(c, "id", "invalid id")
	}
	url := c.Query("imageUrl")
	if url == "" {
		return badRequest(c, "imageUrl", "missing imageUrl")
	}
	w, err := h.Watches.RemoveImage(c.UserContext(), id, url)
	if err != nil {
		return fail(c, "watch.image", err)
	}
	applog.Audit(c, "watch.image.remove", map[string]any{"watch_id": id, "url": url})
	return c.JSON(w)
}

// Suggest returns brand/model completions for the search box.
func (h *WatchHandler) Suggest(c *fiber.Ctx) error {
	term, ok := validate.Q(c.Query("q"))
	if !ok {
		return c.JSON([]string{})
	}
	ws, err := h.Watches.List(c.UserContext())
	if err != nil {
		return fail(c, "watch.suggest", err)
	}
	out := query.Suggest(ws, term, 8)
	if out == nil {
		out = []string{}
	}
	return c.JSON(out)
}

func (h *WatchHandler) Import(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file", "no file uploaded")
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, "watch.import", err)
	}
	defer f.Close()
	inputs, err := export.ParseCSV(f)
	if err != nil {
		return fail(c, "watch.import", err)
	}
	res := h.Watches.Import(c.UserContext(), inputs)
	applog.Audit(c, "watch.import", map[string]any{"imported": len(res.Succeeded), "failed": len(res.Failed)})
	return bulkJSON(c, res)
}

// bulkJSON answers 200 when every item succeeded and 207 otherwise.
func bulkJSON(c *fiber.Ctx, res domain.BulkResult) error {
	if len(res.Failed) > 0 {
		return c.Status(fiber.StatusMultiStatus).JSON(res)
	}
	return c.JSON(res)
}
