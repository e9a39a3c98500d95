package metrics_test

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"watchflip/internal/domain"
	"watchflip/internal/metrics"
)

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func nd(v float64) decimal.NullDecimal { return decimal.NewNullDecimal(dec(v)) }

func TestBestRevenuePriority(t *testing.T) {
	cases := []struct {
		name string
		w    domain.Watch
		want float64
	}{
		{"serviced wins", domain.Watch{RevenueAsIs: nd(1000), RevenueServiced: nd(1500)}, 1500},
		{"cleaned next", domain.Watch{RevenueAsIs: nd(1000), RevenueCleaned: nd(1200)}, 1200},
		{"as-is last", domain.Watch{RevenueAsIs: nd(1000)}, 1000},
		{"zero skipped", domain.Watch{RevenueServiced: nd(0), RevenueAsIs: nd(900)}, 900},
		{"none", domain.Watch{}, 0},
	}
	for _, tc := range cases {
		got := metrics.BestRevenue(tc.w)
		if !got.Equal(dec(tc.want)) {
			t.Fatalf("%s: want %v, got %s", tc.name, tc.want, got)
		}
	}
}

func TestROIZeroGuard(t *testing.T) {
	w := domain.Watch{PurchasePrice: decimal.Zero, RevenueAsIs: nd(500)}
	for _, b := range []metrics.Basis{metrics.PurchaseOnly, metrics.FullyLoaded} {
		roi := metrics.ProjectedROI(w, b)
		if roi != 0 || math.IsNaN(roi) || math.IsInf(roi, 0) {
			t.Fatalf("want 0 ROI for zero cost, got %v", roi)
		}
	}
	if m := metrics.Margin(domain.Watch{PurchasePrice: dec(10)}, metrics.PurchaseOnly); m != 0 {
		t.Fatalf("want 0 margin without revenue, got %v", m)
	}
}

func TestBasis(t *testing.T) {
	w := domain.Watch{
		PurchasePrice:   dec(1000),
		ServiceCost:     nd(200),
		CleaningCost:    nd(50),
		OtherCosts:      nd(50),
		RevenueServiced: nd(1950),
	}
	if p := metrics.ProjectedProfit(w, metrics.PurchaseOnly); !p.Equal(dec(950)) {
		t.Fatalf("purchase-only profit: got %s", p)
	}
	if p := metrics.ProjectedProfit(w, metrics.FullyLoaded); !p.Equal(dec(650)) {
		t.Fatalf("fully-loaded profit: got %s", p)
	}
	if roi := metrics.ProjectedROI(w, metrics.FullyLoaded); math.Abs(roi-50) > 1e-9 {
		t.Fatalf("fully-loaded roi: want 50, got %v", roi)
	}
	if metrics.ParseBasis("fully-loaded") != metrics.FullyLoaded || metrics.ParseBasis("bogus") != metrics.PurchaseOnly {
		t.Fatal("ParseBasis mapping")
	}
}

func TestRealizedOnlyForSold(t *testing.T) {
	w := domain.Watch{PurchasePrice: dec(100), ServiceCost: nd(20), SoldPrice: nd(180)}
	if _, ok := metrics.RealizedProfit(w); ok {
		t.Fatal("unsold watch must not report realized profit")
	}
	w.Status = domain.StatusSold
	p, ok := metrics.RealizedProfit(w)
	if !ok || !p.Equal(dec(60)) {
		t.Fatalf("want realized 60, got %s (%v)", p, ok)
	}
	roi, _ := metrics.RealizedROI(w)
	if math.Abs(roi-50) > 1e-9 {
		t.Fatalf("want realized roi 50, got %v", roi)
	}
}

func TestAverageROIIsMeanOfRatios(t *testing.T) {
	ws := []domain.Watch{
		{Brand: "A", PurchasePrice: dec(100), RevenueAsIs: nd(200)},
		{Brand: "B", PurchasePrice: dec(1000), RevenueAsIs: nd(1100)},
	}
	p := metrics.Summarize(ws, metrics.PurchaseOnly)
	if math.Abs(p.AverageROI-55) > 1e-9 {
		t.Fatalf("want 55, got %v", p.AverageROI)
	}
	if !p.TotalProfit.Equal(dec(200)) || !p.TotalPurchase.Equal(dec(1100)) {
		t.Fatalf("totals: %+v", p)
	}
	if p.ROIBuckets.High != 1 || p.ROIBuckets.Low != 1 {
		t.Fatalf("buckets: %+v", p.ROIBuckets)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	p := metrics.Summarize(nil, metrics.FullyLoaded)
	if p.Count != 0 || p.AverageROI != 0 || p.AverageDaysToSell != 0 || p.ProjectionAccuracy != 0 {
		t.Fatalf("empty portfolio not zero: %+v", p)
	}
	if !p.TotalProfit.IsZero() {
		t.Fatalf("empty total profit: %s", p.TotalProfit)
	}
	if len(metrics.ByBrand(nil, metrics.PurchaseOnly)) != 0 {
		t.Fatal("ByBrand on empty input")
	}
}

func TestSoldAggregates(t *testing.T) {
	bought := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sold := bought.AddDate(0, 0, 30)
	ws := []domain.Watch{
		{PurchasePrice: dec(100), PurchaseDate: &bought, SoldDate: &sold, SoldPrice: nd(220), RevenueAsIs: nd(200), Status: domain.StatusSold},
		{PurchasePrice: dec(100), SoldPrice: nd(150), Status: domain.StatusSold},
		{PurchasePrice: dec(100), Status: domain.StatusSold},
	}
	p := metrics.Summarize(ws, metrics.PurchaseOnly)
	if p.SoldCount != 2 {
		t.Fatalf("want 2 realized, got %d", p.SoldCount)
	}
	if p.AverageDaysToSell != 30 {
		t.Fatalf("want 30 days, got %v", p.AverageDaysToSell)
	}
	// (220-200)/200 = 10%, second has no estimate and counts as 0.
	if math.Abs(p.ProjectionAccuracy-5) > 1e-9 {
		t.Fatalf("want accuracy 5, got %v", p.ProjectionAccuracy)
	}
	if p.ByStatus[domain.StatusSold] != 3 {
		t.Fatalf("status counts: %+v", p.ByStatus)
	}
}

func TestByBrand(t *testing.T) {
	ws := []domain.Watch{
		{Brand: "Seiko", PurchasePrice: dec(100), RevenueAsIs: nd(150)},
		{Brand: "Rolex", PurchasePrice: dec(5000), RevenueAsIs: nd(6000)},
		{Brand: "seiko", PurchasePrice: dec(300), RevenueAsIs: nd(350)},
	}
	got := metrics.ByBrand(ws, metrics.PurchaseOnly)
	if len(got) != 2 || got[0].Brand != "Rolex" || got[1].Brand != "Seiko" {
		t.Fatalf("order: %+v", got)
	}
	s := got[1]
	if s.Count != 2 || !s.TotalProfit.Equal(dec(100)) || !s.AverageProfit.Equal(dec(50)) {
		t.Fatalf("seiko stats: %+v", s)
	}
	if math.Abs(s.AverageROI-25) > 1e-9 {
		t.Fatalf("seiko roi: want 25, got %v", s.AverageROI)
	}
}
