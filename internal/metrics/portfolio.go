package metrics

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"watchflip/internal/domain"
)

// ROIBuckets counts watches by projected ROI band.
type ROIBuckets struct {
	High     int `json:"high"`     // > 50%
	Medium   int `json:"medium"`   // > 20%
	Low      int `json:"low"`      // > 0%
	Negative int `json:"negative"` // <= 0%
}

func (b *ROIBuckets) add(roi float64) {
	switch {
	case roi > 50:
		b.High++
	case roi > 20:
		b.Medium++
	case roi > 0:
		b.Low++
	default:
		b.Negative++
	}
}

type Portfolio struct {
	Basis string `json:"basis"`
	Count int    `json:"count"`

	TotalPurchase    decimal.Decimal `json:"totalPurchase"`
	TotalCost        decimal.Decimal `json:"totalCost"`
	RevenueAsIs      decimal.Decimal `json:"revenueAsIs"`
	RevenueCleaned   decimal.Decimal `json:"revenueCleaned"`
	RevenueServiced  decimal.Decimal `json:"revenueServiced"`
	TotalBestRevenue decimal.Decimal `json:"totalBestRevenue"`
	TotalProfit      decimal.Decimal `json:"totalProfit"`
	AverageROI       float64         `json:"averageROI"`

	ByStatus   map[domain.Status]int `json:"byStatus"`
	ROIBuckets ROIBuckets            `json:"roiBuckets"`
	Favorites  int                   `json:"favorites"`

	SoldCount          int             `json:"soldCount"`
	RealizedProfit     decimal.Decimal `json:"realizedProfit"`
	AverageRealizedROI float64         `json:"averageRealizedROI"`
	AverageDaysToSell  float64         `json:"averageDaysToSell"`
	ProjectionAccuracy float64         `json:"projectionAccuracy"`
}

// Summarize aggregates ws. AverageROI is the mean of per-watch ROI, not
// pooled profit over pooled cost.
func Summarize(ws []domain.Watch, basis Basis) Portfolio {
	p := Portfolio{
		Basis:            basis.String(),
		Count:            len(ws),
		TotalPurchase:    decimal.Zero,
		TotalCost:        decimal.Zero,
		RevenueAsIs:      decimal.Zero,
		RevenueCleaned:   decimal.Zero,
		RevenueServiced:  decimal.Zero,
		TotalBestRevenue: decimal.Zero,
		TotalProfit:      decimal.Zero,
		RealizedProfit:   decimal.Zero,
		ByStatus:         make(map[domain.Status]int, len(domain.Statuses)),
	}
	for _, s := range domain.Statuses {
		p.ByStatus[s] = 0
	}

	var roiSum, realizedROISum, daysSum, accuracySum float64
	var daysN int
	for _, w := range ws {
		p.TotalPurchase = p.TotalPurchase.Add(w.PurchasePrice)
		p.TotalCost = p.TotalCost.Add(TotalCost(w))
		p.RevenueAsIs = p.RevenueAsIs.Add(orZero(w.RevenueAsIs))
		p.RevenueCleaned = p.RevenueCleaned.Add(orZero(w.RevenueCleaned))
		p.RevenueServiced = p.RevenueServiced.Add(orZero(w.RevenueServiced))
		p.TotalBestRevenue = p.TotalBestRevenue.Add(BestRevenue(w))
		p.TotalProfit = p.TotalProfit.Add(ProjectedProfit(w, basis))

		roi := ProjectedROI(w, basis)
		roiSum += roi
		p.ROIBuckets.add(roi)
		p.ByStatus[w.Status]++
		if w.IsFavorite {
			p.Favorites++
		}

		if profit, ok := RealizedProfit(w); ok {
			p.SoldCount++
			p.RealizedProfit = p.RealizedProfit.Add(profit)
			r, _ := RealizedROI(w)
			realizedROISum += r
			e, _ := ProjectionError(w)
			accuracySum += e
			if d, ok := DaysToSell(w); ok {
				daysSum += d
				daysN++
			}
		}
	}
	if p.Count > 0 {
		p.AverageROI = roiSum / float64(p.Count)
	}
	if p.SoldCount > 0 {
		p.AverageRealizedROI = realizedROISum / float64(p.SoldCount)
		p.ProjectionAccuracy = accuracySum / float64(p.SoldCount)
	}
	if daysN > 0 {
		p.AverageDaysToSell = daysSum / float64(daysN)
	}
	return p
}

type BrandStats struct {
	Brand           string          `json:"brand"`
	Count           int             `json:"count"`
	TotalInvestment decimal.Decimal `json:"totalInvestment"`
	TotalValue      decimal.Decimal `json:"totalValue"`
	TotalProfit     decimal.Decimal `json:"totalProfit"`
	AverageROI      float64         `json:"averageROI"`
	AverageProfit   decimal.Decimal `json:"averageProfit"`
}

// ByBrand groups by brand (case-insensitive, first spelling wins) and sorts
// by total profit descending. Brand ROI is pooled: total profit over total
// investment.
func ByBrand(ws []domain.Watch, basis Basis) []BrandStats {
	idx := map[string]int{}
	var out []BrandStats
	for _, w := range ws {
		name := strings.TrimSpace(w.Brand)
		if name == "" {
			name = "Unknown"
		}
		key := strings.ToLower(name)
		i, ok := idx[key]
		if !ok {
			i = len(out)
			idx[key] = i
			out = append(out, BrandStats{
				Brand:           name,
				TotalInvestment: decimal.Zero,
				TotalValue:      decimal.Zero,
				TotalProfit:     decimal.Zero,
				AverageProfit:   decimal.Zero,
			})
		}
		b := &out[i]
		b.Count++
		b.TotalInvestment = b.TotalInvestment.Add(Cost(w, basis))
		b.TotalValue = b.TotalValue.Add(BestRevenue(w))
		b.TotalProfit = b.TotalProfit.Add(ProjectedProfit(w, basis))
	}
	for i := range out {
		b := &out[i]
		b.AverageROI = percent(b.TotalProfit, b.TotalInvestment)
		b.AverageProfit = b.TotalProfit.Div(decimal.NewFromInt(int64(b.Count)))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].TotalProfit.Cmp(out[j].TotalProfit); c != 0 {
			return c > 0
		}
		return out[i].Brand < out[j].Brand
	})
	return out
}
