package handlers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"watchflip/internal/domain"
	applog "watchflip/internal/log"
	"watchflip/internal/metrics"
	"watchflip/internal/quality"
	"watchflip/internal/query"
	"watchflip/internal/services"
	"watchflip/internal/validate"
)

type DashboardHandler struct {
	Watches *services.WatchService
	Prefs   *services.PrefsService
}

func usd(d decimal.Decimal) string { return "$" + d.StringFixed(2) }
func pct(f float64) string         { return fmt.Sprintf("%.1f%%", f) }

type watchView struct {
	domain.Watch
	Cost        string
	BestRevenue string
	Profit      string
	ROI         string
	Positive    bool
}

func viewOf(w domain.Watch, basis metrics.Basis) watchView {
	profit := metrics.ProjectedProfit(w, basis)
	return watchView{
		Watch:       w,
		Cost:        usd(metrics.Cost(w, basis)),
		BestRevenue: usd(metrics.BestRevenue(w)),
		Profit:      usd(profit),
		ROI:         pct(metrics.ProjectedROI(w, basis)),
		Positive:    profit.IsPositive(),
	}
}

// pageURL keeps the current filters and swaps the page number.
func pageURL(c *fiber.Ctx, page int) string {
	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	c.Request().URI().QueryArgs().CopyTo(args)
	args.Set("page", strconv.Itoa(page))
	return "/?" + args.String()
}

func (h *DashboardHandler) Home(c *fiber.Ctx) error {
	p, perr := parseList(c)
	ws, err := h.Watches.List(c.UserContext())
	if err != nil {
		applog.Error(c, "dashboard.error", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load inventory. Please retry."})
	}
	data := fiber.Map{
		"Filters":   p.Raw,
		"Statuses":  domain.Statuses,
		"Brands":    query.Brands(ws),
		"PageSizes": query.PageSizes,
		"Size":      p.Size,
	}
	status := fiber.StatusOK
	if perr != nil {
		applog.Security(c, "validation.fail", map[string]any{"action": "dashboard", "err": perr.Error()})
		data["Err"] = "Some filters were invalid and have been ignored."
		p.Criteria, p.Sort = query.Criteria{}, query.DefaultSort
		status = fiber.StatusBadRequest
	}

	page := query.Run(ws, p.Criteria, p.Sort, p.Page, p.Size)
	rows := make([]watchView, len(page.Items))
	for i, w := range page.Items {
		rows[i] = viewOf(w, metrics.PurchaseOnly)
	}
	data["Page"] = page
	data["Rows"] = rows
	if page.HasPrev() {
		data["PrevURL"] = pageURL(c, page.Prev())
	}
	if page.HasNext() {
		data["NextURL"] = pageURL(c, page.Next())
	}

	sum := metrics.Summarize(ws, metrics.PurchaseOnly)
	data["Summary"] = sum
	data["SummaryView"] = fiber.Map{
		"TotalPurchase": usd(sum.TotalPurchase),
		"BestRevenue":   usd(sum.TotalBestRevenue),
		"Profit":        usd(sum.TotalProfit),
		"AverageROI":    pct(sum.AverageROI),
		"Realized":      usd(sum.RealizedProfit),
		"DaysToSell":    fmt.Sprintf("%.0f", sum.AverageDaysToSell),
		"Accuracy":      pct(sum.ProjectionAccuracy),
	}
	var statusCounts []fiber.Map
	for _, st := range domain.Statuses {
		statusCounts = append(statusCounts, fiber.Map{"Label": st.Label(), "Count": sum.ByStatus[st]})
	}
	data["StatusCounts"] = statusCounts

	var brands []fiber.Map
	for _, b := range metrics.ByBrand(ws, metrics.PurchaseOnly) {
		brands = append(brands, fiber.Map{
			"Brand": b.Brand, "Count": b.Count, "Investment": usd(b.TotalInvestment),
			"Profit": usd(b.TotalProfit), "ROI": pct(b.AverageROI), "AvgProfit": usd(b.AverageProfit),
		})
	}
	data["BrandStats"] = brands
	data["Duplicates"] = quality.Duplicates(ws)
	data["Findings"] = quality.Check(ws)

	if searches, err := h.Prefs.Searches(c.UserContext()); err == nil {
		data["Searches"] = searches
	} else {
		applog.Warn(c, "prefs.searches.error", err, nil)
	}
	if hits, err := h.Prefs.CheckAlerts(c.UserContext(), ws); err == nil {
		data["AlertHits"] = hits
	} else {
		applog.Warn(c, "prefs.alerts.error", err, nil)
	}
	c.Status(status)
	return render(c, "dashboard", data)
}

func (h *DashboardHandler) detail(c *fiber.Ctx, w domain.Watch, errMsg string) error {
	data := fiber.Map{
		"Watch":       w,
		"Statuses":    domain.Statuses,
		"Purchase":    viewOf(w, metrics.PurchaseOnly),
		"FullyLoaded": viewOf(w, metrics.FullyLoaded),
		"Margin":      pct(metrics.Margin(w, metrics.FullyLoaded)),
		"TotalCost":   usd(metrics.TotalCost(w)),
		"Issues":      quality.Issues(w),
		"Err":         errMsg,
	}
	if profit, ok := metrics.RealizedProfit(w); ok {
		roi, _ := metrics.RealizedROI(w)
		data["Realized"] = fiber.Map{"Profit": usd(profit), "ROI": pct(roi)}
	}
	if days, ok := metrics.DaysToSell(w); ok {
		data["DaysToSell"] = fmt.Sprintf("%.0f", days)
	}
	return render(c, "watch", data)
}

func (h *DashboardHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "id"})
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "This watch does not exist"})
	}
	w, err := h.Watches.Get(c.UserContext(), id)
	if err != nil {
		return h.pageErr(c, err)
	}
	return h.detail(c, w, "")
}

func (h *DashboardHandler) pageErr(c *fiber.Ctx, err error) error {
	if isNotFound(err) {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "This watch does not exist"})
	}
	applog.Error(c, "watch.page.error", err, nil)
	return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Something went wrong. Please try again."})
}

// PostStatus handles the detail page's status form.
func (h *DashboardHandler) PostStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "This watch does not exist"})
	}
	w, err := h.Watches.Get(c.UserContext(), id)
	if err != nil {
		return h.pageErr(c, err)
	}
	st, ok := domain.ParseStatus(c.FormValue("status"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "status"})
		c.Status(fiber.StatusBadRequest)
		return h.detail(c, w, "Choose a valid status.")
	}
	in := domain.WatchInput{Status: &st}
	if raw := c.FormValue("soldPrice"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			c.Status(fiber.StatusBadRequest)
			return h.detail(c, w, "Enter a valid sold price.")
		}
		in.SoldPrice = &d
	}
	if _, err := h.Watches.Update(c.UserContext(), id, in); err != nil {
		if isValidation(err) {
			applog.Security(c, "validation.fail", map[string]any{"action": "watch.status", "err": err.Error()})
			c.Status(fiber.StatusBadRequest)
			return h.detail(c, w, "A sold watch needs a sold price.")
		}
		return h.pageErr(c, err)
	}
	applog.Audit(c, "watch.status", map[string]any{"watch_id": id, "status": string(st)})
	return c.Redirect("/watch/" + id)
}

func (h *DashboardHandler) PostFavorite(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "This watch does not exist"})
	}
	w, err := h.Watches.ToggleFavorite(c.UserContext(), id)
	if err != nil {
		return h.pageErr(c, err)
	}
	applog.Audit(c, "watch.favorite", map[string]any{"watch_id": id, "favorite": w.IsFavorite})
	return c.Redirect("/watch/" + id)
}
