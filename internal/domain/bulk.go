package domain

import "github.com/shopspring/decimal"

// BulkPatch is the subset of fields a bulk edit may touch.
type BulkPatch struct {
	Status       *Status          `json:"status"`
	AddTags      []string         `json:"addTags"`
	ServiceCost  *decimal.Decimal `json:"serviceCost"`
	CleaningCost *decimal.Decimal `json:"cleaningCost"`
	OtherCosts   *decimal.Decimal `json:"otherCosts"`
}

func (p BulkPatch) Empty() bool {
	return p.Status == nil && len(p.AddTags) == 0 && p.ServiceCost == nil && p.CleaningCost == nil && p.OtherCosts == nil
}

type BulkFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// BulkResult reports each id independently; nothing is rolled back.
type BulkResult struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

func (r BulkResult) Partial() bool { return len(r.Failed) > 0 && len(r.Succeeded) > 0 }
