package validate_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"watchflip/internal/domain"
	"watchflip/internal/validate"
)

func ptr[T any](v T) *T { return &v }

func TestWatchCreateRequired(t *testing.T) {
	v := validate.Watch(domain.WatchInput{}, true)
	for _, f := range []string{"brand", "model", "purchasePrice"} {
		if v[f] != validate.CodeRequired {
			t.Fatalf("want %s required, got %v", f, v)
		}
	}
	// Partial updates only check what was supplied.
	if v := validate.Watch(domain.WatchInput{Notes: ptr("ok")}, false); !v.Empty() {
		t.Fatalf("patch: %v", v)
	}
}

func TestWatchRanges(t *testing.T) {
	in := domain.WatchInput{
		Brand:            ptr("Omega"),
		Model:            ptr(" "),
		PurchasePrice:    ptr(decimal.Zero),
		RevenueAsIs:      ptr(decimal.NewFromInt(-1)),
		ServiceCost:      ptr(decimal.NewFromInt(-5)),
		CleaningCost:     ptr(decimal.Zero),
		SoldPrice:        ptr(decimal.Zero),
		Status:           ptr(domain.Status("lost")),
		AIConfidence:     ptr(101),
		PurchaseDate:     ptr("yesterday"),
		AIRecommendation: ptr(domain.Recommendation("hold")),
	}
	v := validate.Watch(in, true)
	want := map[string]string{
		"model":            validate.CodeRequired,
		"purchasePrice":    validate.CodePositive,
		"revenueAsIs":      validate.CodeNonNegative,
		"serviceCost":      validate.CodeNonNegative,
		"soldPrice":        validate.CodePositive,
		"status":           validate.CodeInvalidStatus,
		"aiConfidence":     validate.CodeOutOfRange,
		"purchaseDate":     validate.CodeInvalidDate,
		"aiRecommendation": validate.CodeInvalidRecommend,
	}
	for f, code := range want {
		if v[f] != code {
			t.Fatalf("%s: want %s, got %q (all: %v)", f, code, v[f], v)
		}
	}
	if _, ok := v["cleaningCost"]; ok {
		t.Fatal("zero cleaning cost is allowed")
	}
	var verr *validate.Error
	if err := v.Err(); !errors.As(err, &verr) || len(verr.Violations) != len(want) {
		t.Fatalf("Err(): %v", err)
	}
	if (validate.Violations{}).Err() != nil {
		t.Fatal("empty violations must not be an error")
	}
}

func TestLinkage(t *testing.T) {
	now := time.Now()
	sold := domain.Watch{Status: domain.StatusSold}
	if v := validate.Linkage(sold); v["soldPrice"] != validate.CodeSoldNeedsPrice {
		t.Fatalf("sold without price: %v", v)
	}
	sold.SoldPrice = decimal.NewNullDecimal(decimal.NewFromInt(10))
	if v := validate.Linkage(sold); !v.Empty() {
		t.Fatalf("sold with price: %v", v)
	}
	unsold := domain.Watch{Status: domain.StatusReadyToSell, SoldDate: &now}
	if v := validate.Linkage(unsold); v["soldDate"] != validate.CodeSoldOnlyWhenSold {
		t.Fatalf("unsold with date: %v", v)
	}
}

func TestHelpers(t *testing.T) {
	if validate.Page("0") != 1 || validate.Page("x") != 1 || validate.Page("7") != 7 {
		t.Fatal("Page")
	}
	if _, ok := validate.Q("Rolex 16610"); !ok {
		t.Fatal("Q rejects a plain reference search")
	}
	for _, q := range []string{"5711/1A (blue)", "Ref: 16610", "Seiko+Bracelet", "Cartier Tank™"} {
		if got, ok := validate.Q(q); !ok || got != q {
			t.Fatalf("Q(%q) = %q, %v", q, got, ok)
		}
	}
	if got, _ := validate.Q("<b>Omega</b>"); got != "bOmega/b" {
		t.Fatalf("Q should drop angle brackets, got %q", got)
	}
	if _, ok := validate.Q(" \t\n "); ok {
		t.Fatal("Q accepts an empty search")
	}
	if got, _ := validate.Q(strings.Repeat("ö", 80)); len([]rune(got)) != 60 {
		t.Fatalf("Q cap: %d runes", len([]rune(got)))
	}
	got := validate.IDs([]string{"a", "a", "../x", "b"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("IDs: %v", got)
	}
	if validate.Password("short") || !validate.Password("Str0ng!pass") {
		t.Fatal("Password")
	}
	if v := validate.Bulk(domain.BulkPatch{}); v["patch"] != validate.CodeRequired {
		t.Fatalf("empty bulk: %v", v)
	}
}
