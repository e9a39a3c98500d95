package domain

import "github.com/shopspring/decimal"

// ScrapedListing is what a marketplace scraper extracts from one listing page.
type ScrapedListing struct {
	URL             string          `json:"url"`
	ListingID       string          `json:"listingId,omitempty"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Images          []string        `json:"images"`
	Condition       string          `json:"condition"`
	Brand           string          `json:"brand,omitempty"`
	Model           string          `json:"model,omitempty"`
	ReferenceNumber string          `json:"referenceNumber,omitempty"`
}

// ListingSummary is the input to a buy/pass analysis.
type ListingSummary struct {
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Condition       string          `json:"condition"`
	Brand           string          `json:"brand,omitempty"`
	Model           string          `json:"model,omitempty"`
	ReferenceNumber string          `json:"referenceNumber,omitempty"`
}

// Summary reduces a scraped listing to analysis input.
func (l ScrapedListing) Summary() ListingSummary {
	return ListingSummary{
		Title:           l.Title,
		Description:     l.Description,
		Price:           l.Price,
		Condition:       l.Condition,
		Brand:           l.Brand,
		Model:           l.Model,
		ReferenceNumber: l.ReferenceNumber,
	}
}

type MarketValue struct {
	AsIs     decimal.Decimal `json:"asIs"`
	Cleaned  decimal.Decimal `json:"cleaned"`
	Serviced decimal.Decimal `json:"serviced"`
}

// Analysis sources. SourceUnavailable tags the result of a disabled analyzer.
const (
	SourceAnthropic   = "anthropic"
	SourcePerplexity  = "perplexity"
	SourceHeuristic   = "heuristic"
	SourceUnavailable = "unavailable"
)

type Analysis struct {
	Recommendation       Recommendation  `json:"recommendation"`
	Confidence           int             `json:"confidence"`
	Explanation          string          `json:"explanation"`
	EstimatedMarketValue MarketValue     `json:"estimatedMarketValue"`
	MaintenanceCost      decimal.Decimal `json:"maintenanceCost"`
	EstimatedROI         float64         `json:"estimatedROI"`
	TimeToSell           string          `json:"timeToSell"`
	PotentialIssues      []string        `json:"potentialIssues"`
	ComparableListings   []string        `json:"comparableListings"`
	Source               string          `json:"source"`
}

// Available is false for the tagged result of a disabled analyzer.
func (a Analysis) Available() bool { return a.Source != SourceUnavailable }
