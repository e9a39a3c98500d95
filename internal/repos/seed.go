package repos

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"watchflip/internal/domain"
)

func demoWatches() []domain.Watch {
	money := func(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
	opt := func(v int64) decimal.NullDecimal { return decimal.NewNullDecimal(money(v)) }
	ago := func(days int) *time.Time {
		t := time.Now().UTC().AddDate(0, 0, -days).Truncate(24 * time.Hour)
		return &t
	}
	now := time.Now().UTC()
	ws := []domain.Watch{
		{
			Brand: "Seiko", Model: "SKX007", ReferenceNumber: "SKX007K2",
			PurchasePrice: money(180), PurchaseDate: ago(12),
			RevenueAsIs: opt(220), RevenueCleaned: opt(260), RevenueServiced: opt(340),
			ServiceCost: opt(90), Status: domain.StatusNeedsService,
			Tags: []string{"diver", "automatic"}, ConditionNotes: "Bezel insert faded, runs fast",
		},
		{
			Brand: "Omega", Model: "Seamaster 300M", ReferenceNumber: "2531.80",
			PurchasePrice: money(1650), PurchaseDate: ago(45),
			RevenueCleaned: opt(2100), RevenueServiced: opt(2450),
			CleaningCost: opt(60), Status: domain.StatusReadyToSell,
			Tags: []string{"diver", "bond"}, ConditionNotes: "Light desk diving marks", IsFavorite: true,
		},
		{
			Brand: "Tudor", Model: "Black Bay 58", ReferenceNumber: "79030N",
			PurchasePrice: money(2700), PurchaseDate: ago(90), SoldDate: ago(20),
			RevenueAsIs: opt(3100), SoldPrice: opt(3050), Status: domain.StatusSold,
			Tags: []string{"diver"}, ConditionNotes: "Full set",
		},
		{
			Brand: "Hamilton", Model: "Khaki Field Mechanical",
			PurchasePrice: money(240), PurchaseDate: ago(3),
			Status: domain.StatusProblemItem, Notes: "Crown does not engage",
		},
	}
	for i := range ws {
		ws[i].ID = uuid.NewString()
		ws[i].CreatedAt = now.Add(time.Duration(i) * time.Second)
		ws[i].UpdatedAt = ws[i].CreatedAt
		if ws[i].Tags == nil {
			ws[i].Tags = []string{}
		}
		ws[i].Images = []string{}
	}
	return ws
}
