package query

import (
	"sort"
	"time"

	"watchflip/internal/domain"
	"watchflip/internal/metrics"
)

type Field string

const (
	SortBrand          Field = "brand"
	SortPurchasePrice  Field = "purchasePrice"
	SortProfit         Field = "profit"
	SortRecommendation Field = "recommendation"
	SortPurchaseDate   Field = "purchaseDate"
	SortROI            Field = "roi"
)

// Sort is a single key. Ties keep the order of the input.
type Sort struct {
	Field Field
	Desc  bool
}

// DefaultSort matches the inventory table's initial state.
var DefaultSort = Sort{Field: SortBrand}

func (f Field) Valid() bool {
	switch f {
	case SortBrand, SortPurchasePrice, SortProfit, SortRecommendation, SortPurchaseDate, SortROI:
		return true
	}
	return false
}

// Apply returns a sorted copy. Unknown fields leave order unchanged.
func (s Sort) Apply(ws []domain.Watch) []domain.Watch {
	out := append([]domain.Watch(nil), ws...)
	cmp := s.compare()
	if cmp == nil {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(out[i], out[j])
		if s.Desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func (s Sort) compare() func(a, b domain.Watch) int {
	switch s.Field {
	case SortBrand:
		return func(a, b domain.Watch) int { return cmpString(a.Brand, b.Brand) }
	case SortPurchasePrice:
		return func(a, b domain.Watch) int { return a.PurchasePrice.Cmp(b.PurchasePrice) }
	case SortProfit:
		return func(a, b domain.Watch) int {
			return metrics.ProjectedProfit(a, metrics.PurchaseOnly).Cmp(metrics.ProjectedProfit(b, metrics.PurchaseOnly))
		}
	case SortRecommendation:
		return func(a, b domain.Watch) int { return cmpString(string(a.AIRecommendation), string(b.AIRecommendation)) }
	case SortPurchaseDate:
		return func(a, b domain.Watch) int { return dateOf(a).Compare(dateOf(b)) }
	case SortROI:
		return func(a, b domain.Watch) int {
			ra, rb := metrics.ProjectedROI(a, metrics.PurchaseOnly), metrics.ProjectedROI(b, metrics.PurchaseOnly)
			switch {
			case ra < rb:
				return -1
			case ra > rb:
				return 1
			}
			return 0
		}
	}
	return nil
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func dateOf(w domain.Watch) time.Time {
	if w.PurchaseDate == nil {
		return time.Time{}
	}
	return *w.PurchaseDate
}
