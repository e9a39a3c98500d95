// Package query filters, sorts and paginates watch collections.
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"watchflip/internal/domain"
	"watchflip/internal/metrics"
)

type Quick string

const (
	QuickNone       Quick = ""
	QuickHighProfit Quick = "high-profit"
	QuickHighROI    Quick = "high-roi"
	QuickLowCost    Quick = "low-cost"
	QuickRecent     Quick = "recent"
	QuickFavorites  Quick = "favorites"
)

var (
	highProfitFloor = decimal.NewFromInt(1000)
	lowCostCeiling  = decimal.NewFromInt(1000)
)

const (
	highROIFloor = 30.0
	recentWindow = 30 * 24 * time.Hour
)

// Criteria is a conjunction; zero-valued fields add no clause.
type Criteria struct {
	Search         string
	Status         domain.Status
	Brand          string
	ProfitableOnly bool
	MinPrice       decimal.NullDecimal
	MaxPrice       decimal.NullDecimal
	From           *time.Time
	To             *time.Time
	Tag            string
	Quick          Quick
	Now            time.Time
}

// Match reports whether w passes every clause in c.
func (c Criteria) Match(w domain.Watch) bool {
	if q := strings.ToLower(strings.TrimSpace(c.Search)); q != "" {
		if !containsFold(w.Brand, q) && !containsFold(w.Model, q) &&
			!containsFold(w.ReferenceNumber, q) && !containsFold(w.Title, q) {
			return false
		}
	}
	if c.Status != "" && c.Status != "all" && w.Status != c.Status {
		return false
	}
	if c.Brand != "" && c.Brand != "all" && w.Brand != c.Brand {
		return false
	}
	if c.ProfitableOnly && !metrics.BestRevenue(w).GreaterThan(w.PurchasePrice) {
		return false
	}
	if c.MinPrice.Valid && w.PurchasePrice.LessThan(c.MinPrice.Decimal) {
		return false
	}
	if c.MaxPrice.Valid && w.PurchasePrice.GreaterThan(c.MaxPrice.Decimal) {
		return false
	}
	if c.From != nil || c.To != nil {
		if w.PurchaseDate == nil {
			return false
		}
		d := *w.PurchaseDate
		if c.From != nil && d.Before(*c.From) {
			return false
		}
		if c.To != nil && d.After(endOfDay(*c.To)) {
			return false
		}
	}
	if tag := strings.ToLower(strings.TrimSpace(c.Tag)); tag != "" {
		hit := false
		for _, t := range w.Tags {
			if containsFold(t, tag) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return c.matchQuick(w)
}

func (c Criteria) matchQuick(w domain.Watch) bool {
	switch c.Quick {
	case QuickHighProfit:
		return metrics.ProjectedProfit(w, metrics.PurchaseOnly).GreaterThan(highProfitFloor)
	case QuickHighROI:
		return metrics.ProjectedROI(w, metrics.PurchaseOnly) > highROIFloor
	case QuickLowCost:
		return w.PurchasePrice.LessThan(lowCostCeiling)
	case QuickRecent:
		if w.PurchaseDate == nil {
			return false
		}
		now := c.Now
		if now.IsZero() {
			now = time.Now()
		}
		return !w.PurchaseDate.Before(now.Add(-recentWindow))
	case QuickFavorites:
		return w.IsFavorite
	}
	return true
}

// Filter keeps input order.
func Filter(ws []domain.Watch, c Criteria) []domain.Watch {
	out := make([]domain.Watch, 0, len(ws))
	for _, w := range ws {
		if c.Match(w) {
			out = append(out, w)
		}
	}
	return out
}

// endOfDay widens a date-only upper bound to cover the whole day.
func endOfDay(t time.Time) time.Time {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Add(24*time.Hour - time.Nanosecond)
	}
	return t
}

// lowered needle expected.
func containsFold(s, needle string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), needle)
}

// Brands returns distinct non-empty brands sorted alphabetically.
func Brands(ws []domain.Watch) []string {
	seen := map[string]bool{}
	var out []string
	for _, w := range ws {
		b := strings.TrimSpace(w.Brand)
		if b == "" || seen[b] {
			continue
		}
		seen[b] = true
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}

// Suggest returns up to limit distinct brand, model or reference values
// containing term.
func Suggest(ws []domain.Watch, term string, limit int) []string {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || limit <= 0 {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, w := range ws {
		for _, v := range []string{w.Brand, w.Model, w.ReferenceNumber} {
			if !containsFold(v, term) || seen[strings.ToLower(v)] {
				continue
			}
			seen[strings.ToLower(v)] = true
			out = append(out, v)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}
