package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	applog "watchflip/internal/log"
)

// RegisterAPI mounts the JSON API. Reads are public; every write and the
// outbound listing calls go through RequireOperator.
func RegisterAPI(api fiber.Router, d *Deps) {
	op := RequireOperator(d.Auth)

	api.Get("/watches", d.WatchHandler.List)
	api.Get("/watches/suggest", d.WatchHandler.Suggest)
	api.Post("/watches/bulk/status", op, d.BulkHandler.Status)
	api.Post("/watches/bulk/delete", op, d.BulkHandler.Delete)
	api.Post("/watches/bulk/edit", op, d.BulkHandler.Edit)
	api.Post("/watches/import", op, d.WatchHandler.Import)
	api.Get("/watches/:id", d.WatchHandler.Get)
	api.Post("/watches", op, d.WatchHandler.Create)
	api.Put("/watches/:id", op, d.WatchHandler.Update)
	api.Delete("/watches/:id", op, d.WatchHandler.Delete)
	api.Post("/watches/:id/status", op, d.WatchHandler.SetStatus)
	api.Post("/watches/:id/favorite", op, d.WatchHandler.ToggleFavorite)
	api.Post("/watches/:id/images", op, d.WatchHandler.UploadImage)
	api.Delete("/watches/:id/images", op, d.WatchHandler.DeleteImage)

	api.Get("/metrics/summary", d.InsightsHandler.Summary)
	api.Get("/metrics/brands", d.InsightsHandler.Brands)
	api.Get("/quality/duplicates", d.InsightsHandler.Duplicates)
	api.Get("/quality/issues", d.InsightsHandler.Issues)

	api.Get("/export/csv", d.ExportHandler.CSV)
	api.Get("/export/json", d.ExportHandler.JSON)
	api.Get("/export/report", d.ExportHandler.Report)
	api.Get("/export/pdf", d.ExportHandler.PDF)

	// Scrapes launch a browser; keep them rare.
	outbound := limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|listings"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.listings.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	listings := api.Group("/listings", op, outbound)
	listings.Post("/scrape", d.ListingHandler.Scrape)
	listings.Post("/analyze", d.ListingHandler.Analyze)
	listings.Post("/draft", d.ListingHandler.Draft)

	prefs := api.Group("/prefs")
	prefs.Get("/searches", d.PrefsHandler.Searches)
	prefs.Put("/searches", op, d.PrefsHandler.SaveSearch)
	prefs.Put("/searches/:id", op, d.PrefsHandler.SaveSearch)
	prefs.Delete("/searches/:id", op, d.PrefsHandler.DeleteSearch)
	prefs.Get("/templates", d.PrefsHandler.Templates)
	prefs.Put("/templates", op, d.PrefsHandler.SaveTemplate)
	prefs.Put("/templates/:id", op, d.PrefsHandler.SaveTemplate)
	prefs.Delete("/templates/:id", op, d.PrefsHandler.DeleteTemplate)
	prefs.Get("/alerts", d.PrefsHandler.Alerts)
	prefs.Get("/alerts/check", d.PrefsHandler.CheckAlerts)
	prefs.Put("/alerts", op, d.PrefsHandler.SaveAlert)
	prefs.Put("/alerts/:id", op, d.PrefsHandler.SaveAlert)
	prefs.Delete("/alerts/:id", op, d.PrefsHandler.DeleteAlert)
}

// RegisterPages mounts the server-rendered dashboard.
func RegisterPages(app fiber.Router, d *Deps) {
	op := RequireOperator(d.Auth)
	app.Get("/", d.DashboardHandler.Home)
	app.Get("/watch/:id", d.DashboardHandler.Detail)
	app.Post("/watch/:id/status", op, d.DashboardHandler.PostStatus)
	app.Post("/watch/:id/favorite", op, d.DashboardHandler.PostFavorite)
}
