package handlers

import (
	"bytes"
	"time"

	"github.com/gofiber/fiber/v2"

	"watchflip/internal/domain"
	"watchflip/internal/export"
	applog "watchflip/internal/log"
	"watchflip/internal/query"
	"watchflip/internal/services"
)

// ExportHandler downloads the filtered, sorted inventory (all pages).
type ExportHandler struct {
	Watches *services.WatchService
}

func (h *ExportHandler) selection(c *fiber.Ctx) ([]domain.Watch, error) {
	p, err := parseList(c)
	if err != nil {
		return nil, err
	}
	ws, err := h.Watches.List(c.UserContext())
	if err != nil {
		return nil, err
	}
	return p.Sort.Apply(query.Filter(ws, p.Criteria)), nil
}

func (h *ExportHandler) send(c *fiber.Ctx, format, ext, mime string, write func(*bytes.Buffer, []domain.Watch) error) error {
	ws, err := h.selection(c)
	if err != nil {
		return fail(c, "export."+format, err)
	}
	var buf bytes.Buffer
	if err := write(&buf, ws); err != nil {
		return fail(c, "export."+format, err)
	}
	applog.Info(c, "export", map[string]any{"format": format, "rows": len(ws)})
	c.Attachment(export.Filename(ext, time.Now()))
	c.Set(fiber.HeaderContentType, mime)
	return c.Send(buf.Bytes())
}

func (h *ExportHandler) CSV(c *fiber.Ctx) error {
	variant := export.ParseVariant(c.Query("variant"))
	return h.send(c, "csv", "csv", "text/csv; charset=utf-8", func(b *bytes.Buffer, ws []domain.Watch) error {
		return export.WriteCSV(b, ws, variant)
	})
}

func (h *ExportHandler) JSON(c *fiber.Ctx) error {
	return h.send(c, "json", "json", fiber.MIMEApplicationJSONCharsetUTF8, func(b *bytes.Buffer, ws []domain.Watch) error {
		return export.WriteJSON(b, ws)
	})
}

// Report is the printable HTML document; it is served inline.
func (h *ExportHandler) Report(c *fiber.Ctx) error {
	ws, err := h.selection(c)
	if err != nil {
		return fail(c, "export.report", err)
	}
	var buf bytes.Buffer
	if err := export.WriteHTML(&buf, export.BuildReport(ws, time.Now())); err != nil {
		return fail(c, "export.report", err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}

func (h *ExportHandler) PDF(c *fiber.Ctx) error {
	return h.send(c, "pdf", "pdf", "application/pdf", func(b *bytes.Buffer, ws []domain.Watch) error {
		return export.WritePDF(b, export.BuildReport(ws, time.Now()))
	})
}
