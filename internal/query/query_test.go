package query_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"watchflip/internal/domain"
	"watchflip/internal/query"
)

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func nd(v float64) decimal.NullDecimal { return decimal.NewNullDecimal(dec(v)) }

func day(s string) *time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return &t
}

func ids(ws []domain.Watch) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.ID
	}
	return out
}

func sample() []domain.Watch {
	return []domain.Watch{
		{ID: "a", Brand: "Rolex", Model: "Submariner", ReferenceNumber: "126610", PurchasePrice: dec(8000), RevenueServiced: nd(9500), Status: domain.StatusReadyToSell, Tags: []string{"Vintage"}, PurchaseDate: day("2024-05-01"), AIRecommendation: domain.RecommendBuy},
		{ID: "b", Brand: "Seiko", Model: "SKX007", PurchasePrice: dec(150), RevenueAsIs: nd(250), Status: domain.StatusNeedsService, Tags: []string{"vintage", "diver"}, PurchaseDate: day("2024-06-10"), IsFavorite: true},
		{ID: "c", Brand: "Omega", Model: "Speedmaster", PurchasePrice: dec(3000), RevenueCleaned: nd(2800), Status: domain.StatusReadyToSell, Tags: []string{"chrono"}},
		{ID: "d", Brand: "Seiko", Model: "Presage", Title: "Cocktail time", PurchasePrice: dec(300), Status: domain.StatusProblemItem, PurchaseDate: day("2024-06-20"), AIRecommendation: domain.RecommendPass},
	}
}

func TestFilterConjunction(t *testing.T) {
	got := query.Filter(sample(), query.Criteria{Status: domain.StatusReadyToSell, Tag: "vintage"})
	if fmt.Sprint(ids(got)) != "[a]" {
		t.Fatalf("want [a], got %v", ids(got))
	}
}

func TestFilterClauses(t *testing.T) {
	cases := []struct {
		name string
		c    query.Criteria
		want string
	}{
		{"search title", query.Criteria{Search: "cocktail"}, "[d]"},
		{"search ref", query.Criteria{Search: "1266"}, "[a]"},
		{"brand", query.Criteria{Brand: "Seiko"}, "[b d]"},
		{"status all", query.Criteria{Status: "all"}, "[a b c d]"},
		{"profitable", query.Criteria{ProfitableOnly: true}, "[a b]"},
		{"price range", query.Criteria{MinPrice: nd(150), MaxPrice: nd(3000)}, "[b c d]"},
		{"date range", query.Criteria{From: day("2024-06-01"), To: day("2024-06-20")}, "[b d]"},
		{"date bound excludes undated", query.Criteria{To: day("2030-01-01")}, "[a b d]"},
		{"quick favorites", query.Criteria{Quick: query.QuickFavorites}, "[b]"},
		{"quick low-cost", query.Criteria{Quick: query.QuickLowCost}, "[b d]"},
		{"quick high-profit", query.Criteria{Quick: query.QuickHighProfit}, "[a]"},
		{"quick high-roi", query.Criteria{Quick: query.QuickHighROI}, "[b]"},
		{"quick recent", query.Criteria{Quick: query.QuickRecent, Now: *day("2024-07-01")}, "[b d]"},
		{"unknown quick is no-op", query.Criteria{Quick: "nope"}, "[a b c d]"},
	}
	for _, tc := range cases {
		got := fmt.Sprint(ids(query.Filter(sample(), tc.c)))
		if got != tc.want {
			t.Fatalf("%s: want %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestSortStable(t *testing.T) {
	ws := sample()
	cases := []struct {
		s    query.Sort
		want string
	}{
		{query.Sort{Field: query.SortBrand}, "[c a b d]"},
		{query.Sort{Field: query.SortPurchasePrice, Desc: true}, "[a c d b]"},
		{query.Sort{Field: query.SortProfit, Desc: true}, "[a b c d]"},
		{query.Sort{Field: query.SortRecommendation}, "[b c a d]"},
		{query.Sort{Field: query.SortPurchaseDate}, "[c a b d]"},
		{query.Sort{Field: "unknown"}, "[a b c d]"},
	}
	for _, tc := range cases {
		got := fmt.Sprint(ids(tc.s.Apply(ws)))
		if got != tc.want {
			t.Fatalf("%+v: want %s, got %s", tc.s, tc.want, got)
		}
	}
	// Input untouched.
	if fmt.Sprint(ids(ws)) != "[a b c d]" {
		t.Fatal("Apply mutated its input")
	}
}

func many(n int) []domain.Watch {
	ws := make([]domain.Watch, n)
	for i := range ws {
		ws[i] = domain.Watch{ID: fmt.Sprint(i + 1), Brand: "X", PurchasePrice: dec(1)}
	}
	return ws
}

func TestPaginateClamp(t *testing.T) {
	ws := many(45)
	p := query.Paginate(ws, 4, 20)
	if p.Page != 3 || p.TotalPages != 3 || len(p.Items) != 5 {
		t.Fatalf("want clamp to page 3 with 5 items, got page %d of %d (%d items)", p.Page, p.TotalPages, len(p.Items))
	}
	p = query.Paginate(ws, 1, 20)
	if len(p.Items) != 20 || p.Items[0].ID != "1" || p.Items[19].ID != "20" {
		t.Fatalf("page 1: %v", ids(p.Items))
	}
	p = query.Paginate(ws, 0, 33)
	if p.Page != 1 || p.PageSize != query.DefaultPageSize {
		t.Fatalf("want fallback size, got %+v", p)
	}
	p = query.Paginate(nil, 5, 10)
	if p.Page != 1 || p.TotalPages != 1 || len(p.Items) != 0 {
		t.Fatalf("empty: %+v", p)
	}
}

func TestRunResetsPageWhenFilterShrinks(t *testing.T) {
	p := query.Run(sample(), query.Criteria{Brand: "Seiko"}, query.DefaultSort, 3, 10)
	if p.Page != 1 || p.Total != 2 {
		t.Fatalf("want page 1 of 2 items, got %+v", p)
	}
}

func TestBrandsAndSuggest(t *testing.T) {
	if got := fmt.Sprint(query.Brands(sample())); got != "[Omega Rolex Seiko]" {
		t.Fatalf("brands: %s", got)
	}
	if got := fmt.Sprint(query.Suggest(sample(), "se", 5)); got != "[Seiko]" {
		t.Fatalf("suggest: %s", got)
	}
	if got := query.Suggest(sample(), "", 5); got != nil {
		t.Fatalf("empty term: %v", got)
	}
}
