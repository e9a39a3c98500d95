// Package analyzer produces buy/pass/maybe recommendations for listings.
package analyzer

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"watchflip/internal/domain"
)

// ErrUnavailable is returned alongside the tagged result of Disabled.
var ErrUnavailable = errors.New("AI analysis is disabled, please evaluate the listing manually")

type Analyzer interface {
	Analyze(ctx context.Context, l domain.ListingSummary) (domain.Analysis, error)
}

// Disabled returns a clearly tagged placeholder and ErrUnavailable.
type Disabled struct{}

func (Disabled) Analyze(context.Context, domain.ListingSummary) (domain.Analysis, error) {
	return domain.Analysis{
		Recommendation:     domain.RecommendMaybe,
		Confidence:         0,
		Explanation:        "AI analysis is not configured. Evaluate the listing manually.",
		PotentialIssues:    []string{},
		ComparableListings: []string{},
		Source:             domain.SourceUnavailable,
	}, ErrUnavailable
}

var (
	defaultBase   = decimal.NewFromInt(1000)
	buyCeiling    = decimal.NewFromInt(2000)
	asIsFactor    = decimal.RequireFromString("1.2")
	cleanedFactor = decimal.RequireFromString("1.35")
	servicedFac   = decimal.RequireFromString("1.5")
	serviceFactor = decimal.RequireFromString("0.15")
)

// Heuristic is the offline estimate used when a live backend fails: fixed
// multipliers over the asking price.
func Heuristic(l domain.ListingSummary) domain.Analysis {
	base := l.Price
	if !base.IsPositive() {
		base = defaultBase
	}
	rec := domain.RecommendMaybe
	if base.LessThan(buyCeiling) {
		rec = domain.RecommendBuy
	}
	return domain.Analysis{
		Recommendation: rec,
		Confidence:     75,
		Explanation: "Estimate based on typical resale multipliers for the asking price. " +
			"Verify movement condition, authenticity and comparable sold listings before buying.",
		EstimatedMarketValue: domain.MarketValue{
			AsIs:     base.Mul(asIsFactor).Round(0),
			Cleaned:  base.Mul(cleanedFactor).Round(0),
			Serviced: base.Mul(servicedFac).Round(0),
		},
		MaintenanceCost: base.Mul(serviceFactor).Round(0),
		EstimatedROI:    20,
		TimeToSell:      "4-6 weeks",
		PotentialIssues: []string{
			"Condition unverified from photos",
			"Service history unknown",
			"Authenticity should be confirmed",
		},
		ComparableListings: []string{"Check recently sold listings for the same reference"},
		Source:             domain.SourceHeuristic,
	}
}
