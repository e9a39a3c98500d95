package services

import (
	"context"
	"errors"
	"time"

	"watchflip/internal/analyzer"
	"watchflip/internal/domain"
	"watchflip/internal/scraper"
)

// ListingService turns a marketplace listing into a candidate watch.
type ListingService struct {
	Scraper  scraper.Scraper
	Analyzer analyzer.Analyzer
}

func NewListingService(s scraper.Scraper, a analyzer.Analyzer) *ListingService {
	if s == nil {
		s = scraper.Disabled{}
	}
	if a == nil {
		a = analyzer.Disabled{}
	}
	return &ListingService{Scraper: s, Analyzer: a}
}

func (s *ListingService) Scrape(ctx context.Context, url string) (domain.ScrapedListing, error) {
	return s.Scraper.Scrape(ctx, url)
}

func (s *ListingService) Analyze(ctx context.Context, l domain.ListingSummary) (domain.Analysis, error) {
	return s.Analyzer.Analyze(ctx, l)
}

// Draft is a scraped listing plus an analysis, folded into a form-ready
// input. Nothing is persisted.
type Draft struct {
	Listing  domain.ScrapedListing `json:"listing"`
	Analysis domain.Analysis       `json:"analysis"`
	Input    domain.WatchInput     `json:"input"`
}

// Draft needs a working scraper; a disabled analyzer only leaves the
// analysis fields empty.
func (s *ListingService) Draft(ctx context.Context, url string) (Draft, error) {
	l, err := s.Scraper.Scrape(ctx, url)
	if err != nil {
		return Draft{}, err
	}
	a, err := s.Analyzer.Analyze(ctx, l.Summary())
	if err != nil && !errors.Is(err, analyzer.ErrUnavailable) {
		return Draft{}, err
	}
	return Draft{Listing: l, Analysis: a, Input: draftInput(l, a)}, nil
}

func draftInput(l domain.ScrapedListing, a domain.Analysis) domain.WatchInput {
	str := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}
	today := time.Now().UTC().Format("2006-01-02")
	st := domain.StatusNeedsService
	in := domain.WatchInput{
		Brand:           str(l.Brand),
		Model:           str(l.Model),
		ReferenceNumber: str(l.ReferenceNumber),
		Title:           str(l.Title),
		Description:     str(l.Description),
		ConditionNotes:  str(l.Condition),
		PurchaseDate:    &today,
		Status:          &st,
		EbayURL:         str(l.URL),
		EbayListingID:   str(l.ListingID),
		Tags:            []string{},
	}
	if l.Price.IsPositive() {
		p := l.Price
		in.PurchasePrice = &p
	}
	if !a.Available() {
		return in
	}
	mv := a.EstimatedMarketValue
	if mv.AsIs.IsPositive() {
		in.RevenueAsIs = &mv.AsIs
	}
	if mv.Cleaned.IsPositive() {
		in.RevenueCleaned = &mv.Cleaned
	}
	if mv.Serviced.IsPositive() {
		in.RevenueServiced = &mv.Serviced
	}
	if a.MaintenanceCost.IsPositive() {
		c := a.MaintenanceCost
		in.ServiceCost = &c
	}
	rec, conf := a.Recommendation, a.Confidence
	in.AIRecommendation = &rec
	in.AIConfidence = &conf
	in.AIAnalysis = str(a.Explanation)
	return in
}
