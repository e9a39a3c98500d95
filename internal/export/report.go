package export

import (
	"time"

	"watchflip/internal/domain"
	"watchflip/internal/metrics"
)

// Row holds the formatted cells shared by the simple CSV, HTML and PDF reports.
type Row struct {
	Brand           string
	Model           string
	PurchasePrice   string
	RevenueAsIs     string
	RevenueCleaned  string
	RevenueServiced string
	Profit          string
	ROI             string
	Status          string
	StatusLabel     string
	PurchaseDate    string
}

type StatusCount struct {
	Label string
	Count int
}

type Summary struct {
	Count                int
	ByStatus             []StatusCount
	TotalInvestment      string
	TotalProjectedValue  string
	TotalProjectedProfit string
	AverageROI           string
}

type Report struct {
	Title       string
	GeneratedAt time.Time
	Summary     Summary
	Rows        []Row
}

// BuildReport assembles the printable report using purchase-only profit,
// matching the simple CSV columns.
func BuildReport(ws []domain.Watch, now time.Time) Report {
	p := metrics.Summarize(ws, metrics.PurchaseOnly)
	s := Summary{
		Count:                p.Count,
		TotalInvestment:      money(p.TotalPurchase),
		TotalProjectedValue:  money(p.TotalBestRevenue),
		TotalProjectedProfit: money(p.TotalProfit),
		AverageROI:           percent(p.AverageROI),
	}
	for _, st := range domain.Statuses {
		s.ByStatus = append(s.ByStatus, StatusCount{Label: st.Label(), Count: p.ByStatus[st]})
	}
	rows := make([]Row, 0, len(ws))
	for _, w := range ws {
		rows = append(rows, rowFor(w))
	}
	return Report{
		Title:       "Watch Inventory Report",
		GeneratedAt: now,
		Summary:     s,
		Rows:        rows,
	}
}

func rowFor(w domain.Watch) Row {
	return Row{
		Brand:           w.Brand,
		Model:           w.Model,
		PurchasePrice:   money(w.PurchasePrice),
		RevenueAsIs:     optMoney(w.RevenueAsIs),
		RevenueCleaned:  optMoney(w.RevenueCleaned),
		RevenueServiced: optMoney(w.RevenueServiced),
		Profit:          money(metrics.ProjectedProfit(w, metrics.PurchaseOnly)),
		ROI:             ROIString(w, metrics.PurchaseOnly),
		Status:          string(w.Status),
		StatusLabel:     w.Status.Label(),
		PurchaseDate:    date(w.PurchaseDate),
	}
}
