// Package metrics computes profit, ROI and portfolio aggregates over
// watches. Every function is pure and returns zero values instead of
// dividing by zero.
package metrics

import (
	"strings"

	"github.com/shopspring/decimal"

	"watchflip/internal/domain"
)

// Basis selects the cost a profit figure is measured against.
type Basis int

const (
	// PurchaseOnly uses the purchase price alone (list and table views).
	PurchaseOnly Basis = iota
	// FullyLoaded adds service, cleaning and other costs (per-watch summary).
	FullyLoaded
)

func (b Basis) String() string {
	if b == FullyLoaded {
		return "fully_loaded"
	}
	return "purchase_only"
}

// ParseBasis maps a query value to a Basis; anything unrecognised is PurchaseOnly.
func ParseBasis(s string) Basis {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fully_loaded", "fully-loaded", "fullyloaded", "full", "total":
		return FullyLoaded
	}
	return PurchaseOnly
}

var hundred = decimal.NewFromInt(100)

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

// set treats a zero estimate like a missing one.
func set(d decimal.NullDecimal) bool { return d.Valid && !d.Decimal.IsZero() }

// BestRevenue is serviced, else cleaned, else as-is, else zero.
func BestRevenue(w domain.Watch) decimal.Decimal {
	switch {
	case set(w.RevenueServiced):
		return w.RevenueServiced.Decimal
	case set(w.RevenueCleaned):
		return w.RevenueCleaned.Decimal
	case set(w.RevenueAsIs):
		return w.RevenueAsIs.Decimal
	}
	return decimal.Zero
}

// HasRevenueEstimate reports whether any scenario carries a non-zero value.
func HasRevenueEstimate(w domain.Watch) bool {
	return set(w.RevenueServiced) || set(w.RevenueCleaned) || set(w.RevenueAsIs)
}

// TotalCost is purchase price plus every optional cost.
func TotalCost(w domain.Watch) decimal.Decimal {
	return w.PurchasePrice.
		Add(orZero(w.ServiceCost)).
		Add(orZero(w.CleaningCost)).
		Add(orZero(w.OtherCosts))
}

// Cost returns the cost basis of w.
func Cost(w domain.Watch, basis Basis) decimal.Decimal {
	if basis == FullyLoaded {
		return TotalCost(w)
	}
	return w.PurchasePrice
}

func ProjectedProfit(w domain.Watch, basis Basis) decimal.Decimal {
	return BestRevenue(w).Sub(Cost(w, basis))
}

func ProjectedROI(w domain.Watch, basis Basis) float64 {
	return percent(ProjectedProfit(w, basis), Cost(w, basis))
}

// Margin is projected profit as a share of best revenue.
func Margin(w domain.Watch, basis Basis) float64 {
	return percent(ProjectedProfit(w, basis), BestRevenue(w))
}

// IsRealized reports whether w has been sold with a recorded price.
func IsRealized(w domain.Watch) bool {
	return w.Status == domain.StatusSold && w.SoldPrice.Valid
}

// RealizedProfit is sold price minus fully loaded cost; ok is false for
// watches that are not sold with a price.
func RealizedProfit(w domain.Watch) (decimal.Decimal, bool) {
	if !IsRealized(w) {
		return decimal.Zero, false
	}
	return w.SoldPrice.Decimal.Sub(TotalCost(w)), true
}

func RealizedROI(w domain.Watch) (float64, bool) {
	p, ok := RealizedProfit(w)
	if !ok {
		return 0, false
	}
	return percent(p, TotalCost(w)), true
}

// DaysToSell needs a sold watch with both dates.
func DaysToSell(w domain.Watch) (float64, bool) {
	if w.Status != domain.StatusSold || w.SoldDate == nil || w.PurchaseDate == nil {
		return 0, false
	}
	return w.SoldDate.Sub(*w.PurchaseDate).Hours() / 24, true
}

// ProjectionError is how far the sale landed from the best estimate, in
// percent. Zero when there was no estimate.
func ProjectionError(w domain.Watch) (float64, bool) {
	if !IsRealized(w) {
		return 0, false
	}
	best := BestRevenue(w)
	return percent(w.SoldPrice.Decimal.Sub(best), best), true
}

func percent(num, den decimal.Decimal) float64 {
	if !den.IsPositive() {
		return 0
	}
	return num.Div(den).Mul(hundred).InexactFloat64()
}
