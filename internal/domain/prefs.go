package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SearchFilters mirrors the list query parameters so a saved search can be
// replayed as a URL.
type SearchFilters struct {
	Search         string `json:"q,omitempty"`
	Status         string `json:"status,omitempty"`
	Brand          string `json:"brand,omitempty"`
	Tag            string `json:"tag,omitempty"`
	Quick          string `json:"quick,omitempty"`
	ProfitableOnly bool   `json:"profitable,omitempty"`
	MinPrice       string `json:"min,omitempty"`
	MaxPrice       string `json:"max,omitempty"`
	From           string `json:"from,omitempty"`
	To             string `json:"to,omitempty"`
	Sort           string `json:"sort,omitempty"`
	Desc           bool   `json:"desc,omitempty"`
}

type SavedSearch struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Filters   SearchFilters `json:"filters"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Template pre-fills the add-watch form.
type Template struct {
	ID                   string              `json:"id"`
	Name                 string              `json:"name"`
	Brand                string              `json:"brand"`
	Model                string              `json:"model"`
	ReferenceNumber      string              `json:"referenceNumber,omitempty"`
	DefaultPurchasePrice decimal.NullDecimal `json:"defaultPurchasePrice"`
	DefaultServiceCost   decimal.NullDecimal `json:"defaultServiceCost"`
	DefaultCleaningCost  decimal.NullDecimal `json:"defaultCleaningCost"`
	Tags                 []string            `json:"tags"`
	Notes                string              `json:"notes,omitempty"`
	CreatedAt            time.Time           `json:"createdAt"`
}

// PriceAlert fires when a watch reaches either target.
type PriceAlert struct {
	ID           string              `json:"id"`
	WatchID      string              `json:"watchId"`
	TargetProfit decimal.NullDecimal `json:"targetProfit"`
	TargetPrice  decimal.NullDecimal `json:"targetPrice"`
	Active       bool                `json:"isActive"`
	CreatedAt    time.Time           `json:"createdAt"`
}

type AlertHit struct {
	Alert   PriceAlert `json:"alert"`
	Brand   string     `json:"brand"`
	Model   string     `json:"model"`
	Message string     `json:"message"`
}
