package scraper

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/shopspring/decimal"

	"watchflip/internal/workers"
)

func TestCheckURL(t *testing.T) {
	for _, ok := range []string{"https://www.ebay.com/itm/123456789012", "http://ebay.com/itm/x", "https://www.ebay.co.uk/itm/1"} {
		if _, err := CheckURL(ok); err != nil {
			t.Fatalf("%s rejected: %v", ok, err)
		}
	}
	for _, bad := range []string{"", "ftp://ebay.com/x", "https://example.com/itm/1", "not a url"} {
		_, err := CheckURL(bad)
		if !errors.Is(err, ErrInvalidURL) || !errors.Is(err, workers.ErrPermanent) {
			t.Fatalf("%q: want invalid+permanent, got %v", bad, err)
		}
	}
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Scrape(context.Background(), "https://www.ebay.com/itm/123456789012")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}
	_, err = Disabled{}.Scrape(context.Background(), "https://example.com")
	if !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("want ErrInvalidURL first, got %v", err)
	}
}

func TestPageDataListing(t *testing.T) {
	u, _ := url.Parse("https://www.ebay.com/itm/Omega-Speedmaster/256123456789?hash=x")
	p := pageData{
		Title:     "  Omega   Speedmaster Professional ",
		Price:     "US $4,250.00/ea",
		Images:    []string{"a.jpg", "", "a.jpg", "b.jpg"},
		Condition: "Pre-owned",
		Specifics: map[string]string{"Brand": "Omega", "Model": "Speedmaster", "Reference Number": "311.30.42.30.01.005"},
	}
	l := p.listing(u)
	if l.ListingID != "256123456789" || l.Title != "Omega Speedmaster Professional" {
		t.Fatalf("id/title: %+v", l)
	}
	if !l.Price.Equal(decimal.RequireFromString("4250")) {
		t.Fatalf("price: %s", l.Price)
	}
	if len(l.Images) != 2 || l.Brand != "Omega" || l.ReferenceNumber != "311.30.42.30.01.005" {
		t.Fatalf("listing: %+v", l)
	}
}

func TestSpecificPriority(t *testing.T) {
	specs := map[string]string{
		"MPN":              "Does Not Apply",
		"Model Number":     "SUB",
		"Reference Number": "126610LN",
	}
	for i := 0; i < 50; i++ {
		if got := specific(specs, "Reference Number", "Model Number", "MPN"); got != "126610LN" {
			t.Fatalf("run %d: got %q, want the reference number", i, got)
		}
	}
	delete(specs, "Reference Number")
	if got := specific(specs, "Reference Number", "Model Number", "MPN"); got != "SUB" {
		t.Fatalf("fallback: got %q", got)
	}
	if got := specific(map[string]string{"MPN": "Does Not Apply"}, "Reference Number", "MPN"); got != "" {
		t.Fatalf("placeholder should be ignored, got %q", got)
	}
}
