package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"watchflip/internal/analyzer"
	"watchflip/internal/domain"
	"watchflip/internal/scraper"
	"watchflip/internal/services"
)

type fakeScraper struct{ l domain.ScrapedListing }

func (f fakeScraper) Scrape(_ context.Context, url string) (domain.ScrapedListing, error) {
	l := f.l
	l.URL = url
	return l, nil
}

type heuristicAnalyzer struct{}

func (heuristicAnalyzer) Analyze(_ context.Context, l domain.ListingSummary) (domain.Analysis, error) {
	return analyzer.Heuristic(l), nil
}

func TestListingDisabledCollaborators(t *testing.T) {
	svc := services.NewListingService(nil, nil)
	ctx := context.Background()
	if _, err := svc.Scrape(ctx, "https://www.ebay.com/itm/123456789012"); !errors.Is(err, scraper.ErrUnavailable) {
		t.Fatalf("want scraper.ErrUnavailable, got %v", err)
	}
	a, err := svc.Analyze(ctx, domain.ListingSummary{Title: "x"})
	if !errors.Is(err, analyzer.ErrUnavailable) || a.Available() {
		t.Fatalf("want tagged unavailable analysis, got %+v %v", a, err)
	}
}

func TestDraft(t *testing.T) {
	listing := domain.ScrapedListing{
		ListingID: "123456789012", Title: "Seiko SKX007", Brand: "Seiko", Model: "SKX007",
		Price: decimal.NewFromInt(200), Condition: "Used",
	}
	url := "https://www.ebay.com/itm/123456789012"

	d, err := services.NewListingService(fakeScraper{listing}, heuristicAnalyzer{}).Draft(context.Background(), url)
	if err != nil {
		t.Fatal(err)
	}
	in := d.Input
	if *in.Brand != "Seiko" || !in.PurchasePrice.Equal(decimal.NewFromInt(200)) || *in.EbayURL != url {
		t.Fatalf("listing fields not copied: %+v", in)
	}
	if in.RevenueServiced == nil || !in.RevenueServiced.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("market value not copied: %v", in.RevenueServiced)
	}
	if in.AIRecommendation == nil || *in.AIRecommendation != domain.RecommendBuy {
		t.Fatalf("recommendation not copied: %v", in.AIRecommendation)
	}

	// A disabled analyzer still yields a draft without AI fields.
	d, err = services.NewListingService(fakeScraper{listing}, nil).Draft(context.Background(), url)
	if err != nil {
		t.Fatal(err)
	}
	if d.Input.AIRecommendation != nil || d.Analysis.Available() {
		t.Fatalf("unexpected AI fields: %+v", d.Input)
	}
}
