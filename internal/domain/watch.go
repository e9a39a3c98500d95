package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money goes over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type Status string

const (
	StatusNeedsService Status = "needs_service"
	StatusReadyToSell  Status = "ready_to_sell"
	StatusProblemItem  Status = "problem_item"
	StatusSold         Status = "sold"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusNeedsService, StatusReadyToSell, StatusProblemItem, StatusSold}

func (s Status) Valid() bool {
	switch s {
	case StatusNeedsService, StatusReadyToSell, StatusProblemItem, StatusSold:
		return true
	}
	return false
}

// Label is the human form used in exports and templates.
func (s Status) Label() string {
	switch s {
	case StatusNeedsService:
		return "Needs Service"
	case StatusReadyToSell:
		return "Ready to Sell"
	case StatusProblemItem:
		return "Problem Item"
	case StatusSold:
		return "Sold"
	}
	return string(s)
}

// ParseStatus accepts a stored value or its label, case-insensitively.
func ParseStatus(s string) (Status, bool) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses {
		if strings.EqualFold(s, string(st)) || strings.EqualFold(s, st.Label()) {
			return st, true
		}
	}
	return "", false
}

type Recommendation string

const (
	RecommendBuy   Recommendation = "buy"
	RecommendPass  Recommendation = "pass"
	RecommendMaybe Recommendation = "maybe"
)

func (r Recommendation) Valid() bool {
	return r == RecommendBuy || r == RecommendPass || r == RecommendMaybe
}

// Watch is the single persisted record. Optional money fields use
// NullDecimal; Valid=false means the value was never supplied.
type Watch struct {
	ID              string `json:"id"`
	Brand           string `json:"brand"`
	Model           string `json:"model"`
	ReferenceNumber string `json:"referenceNumber,omitempty"`
	Title           string `json:"title,omitempty"`
	Description     string `json:"description,omitempty"`
	ConditionNotes  string `json:"conditionNotes,omitempty"`
	Notes           string `json:"notes,omitempty"`

	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	PurchaseDate  *time.Time      `json:"purchaseDate,omitempty"`

	RevenueAsIs     decimal.NullDecimal `json:"revenueAsIs"`
	RevenueCleaned  decimal.NullDecimal `json:"revenueCleaned"`
	RevenueServiced decimal.NullDecimal `json:"revenueServiced"`

	ServiceCost  decimal.NullDecimal `json:"serviceCost"`
	CleaningCost decimal.NullDecimal `json:"cleaningCost"`
	OtherCosts   decimal.NullDecimal `json:"otherCosts"`

	Status    Status              `json:"status"`
	SoldDate  *time.Time          `json:"soldDate,omitempty"`
	SoldPrice decimal.NullDecimal `json:"soldPrice"`

	Tags       []string `json:"tags"`
	Images     []string `json:"images"`
	IsFavorite bool     `json:"isFavorite"`

	EbayURL       string `json:"ebayUrl,omitempty"`
	EbayListingID string `json:"ebayListingId,omitempty"`

	AIAnalysis       string         `json:"aiAnalysis,omitempty"`
	AIRecommendation Recommendation `json:"aiRecommendation,omitempty"`
	AIConfidence     *int           `json:"aiConfidence,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasTag reports whether any tag matches t case-insensitively.
func (w Watch) HasTag(t string) bool {
	for _, tag := range w.Tags {
		if strings.EqualFold(tag, t) {
			return true
		}
	}
	return false
}

// WatchInput carries the fields a caller supplied. Nil means "not supplied":
// on create the default applies, on update the stored value is kept. A JSON
// null is recorded in Nulls and clears the stored value.
type WatchInput struct {
	Brand           *string `json:"brand"`
	Model           *string `json:"model"`
	ReferenceNumber *string `json:"referenceNumber"`
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	ConditionNotes  *string `json:"conditionNotes"`
	Notes           *string `json:"notes"`

	PurchasePrice *decimal.Decimal `json:"purchasePrice"`
	PurchaseDate  *string          `json:"purchaseDate"`

	RevenueAsIs     *decimal.Decimal `json:"revenueAsIs"`
	RevenueCleaned  *decimal.Decimal `json:"revenueCleaned"`
	RevenueServiced *decimal.Decimal `json:"revenueServiced"`

	ServiceCost  *decimal.Decimal `json:"serviceCost"`
	CleaningCost *decimal.Decimal `json:"cleaningCost"`
	OtherCosts   *decimal.Decimal `json:"otherCosts"`

	Status    *Status          `json:"status"`
	SoldDate  *string          `json:"soldDate"`
	SoldPrice *decimal.Decimal `json:"soldPrice"`

	Tags       []string `json:"tags"`
	IsFavorite *bool    `json:"isFavorite"`

	EbayURL       *string `json:"ebayUrl"`
	EbayListingID *string `json:"ebayListingId"`

	AIAnalysis       *string         `json:"aiAnalysis"`
	AIRecommendation *Recommendation `json:"aiRecommendation"`
	AIConfidence     *int            `json:"aiConfidence"`

	Nulls map[string]bool `json:"-"`
}

// Fields a caller may not null out.
var RequiredFields = []string{"brand", "model", "purchasePrice", "status", "isFavorite"}

// IsNull reports whether field (its JSON name) was sent as null.
func (in WatchInput) IsNull(field string) bool { return in.Nulls[field] }

func (in *WatchInput) UnmarshalJSON(b []byte) error {
	type plain WatchInput
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			if p.Nulls == nil {
				p.Nulls = map[string]bool{}
			}
			p.Nulls[k] = true
		}
	}
	*in = WatchInput(p)
	return nil
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04", "01/02/2006"}

// ParseDate accepts a calendar date or an RFC3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}

// Apply copies every supplied field of in onto w. Input must already be
// validated; unparsable dates are ignored.
func (in WatchInput) Apply(w *Watch) {
	setStr := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setMoney := func(dst *decimal.NullDecimal, src *decimal.Decimal) {
		if src != nil {
			*dst = decimal.NewNullDecimal(*src)
		}
	}
	setStr(&w.Brand, in.Brand)
	setStr(&w.Model, in.Model)
	setStr(&w.ReferenceNumber, in.ReferenceNumber)
	setStr(&w.Title, in.Title)
	setStr(&w.Description, in.Description)
	setStr(&w.ConditionNotes, in.ConditionNotes)
	setStr(&w.Notes, in.Notes)
	setStr(&w.EbayURL, in.EbayURL)
	setStr(&w.EbayListingID, in.EbayListingID)
	setStr(&w.AIAnalysis, in.AIAnalysis)

	if in.PurchasePrice != nil {
		w.PurchasePrice = *in.PurchasePrice
	}
	if in.PurchaseDate != nil {
		if t, err := ParseDate(*in.PurchaseDate); err == nil {
			w.PurchaseDate = &t
		}
	}
	setMoney(&w.RevenueAsIs, in.RevenueAsIs)
	setMoney(&w.RevenueCleaned, in.RevenueCleaned)
	setMoney(&w.RevenueServiced, in.RevenueServiced)
	setMoney(&w.ServiceCost, in.ServiceCost)
	setMoney(&w.CleaningCost, in.CleaningCost)
	setMoney(&w.OtherCosts, in.OtherCosts)
	setMoney(&w.SoldPrice, in.SoldPrice)

	if in.Status != nil {
		w.Status = *in.Status
	}
	if in.SoldDate != nil {
		if t, err := ParseDate(*in.SoldDate); err == nil {
			w.SoldDate = &t
		}
	}
	if in.Tags != nil {
		w.Tags = NormalizeTags(in.Tags)
	}
	if in.IsFavorite != nil {
		w.IsFavorite = *in.IsFavorite
	}
	if in.AIRecommendation != nil {
		w.AIRecommendation = *in.AIRecommendation
	}
	if in.AIConfidence != nil {
		c := *in.AIConfidence
		w.AIConfidence = &c
	}
	in.clear(w)
}

// clear resets every optional field sent as null.
func (in WatchInput) clear(w *Watch) {
	if len(in.Nulls) == 0 {
		return
	}
	strs := map[string]*string{
		"referenceNumber": &w.ReferenceNumber,
		"title":           &w.Title,
		"description":     &w.Description,
		"conditionNotes":  &w.ConditionNotes,
		"notes":           &w.Notes,
		"ebayUrl":         &w.EbayURL,
		"ebayListingId":   &w.EbayListingID,
		"aiAnalysis":      &w.AIAnalysis,
	}
	money := map[string]*decimal.NullDecimal{
		"revenueAsIs":     &w.RevenueAsIs,
		"revenueCleaned":  &w.RevenueCleaned,
		"revenueServiced": &w.RevenueServiced,
		"serviceCost":     &w.ServiceCost,
		"cleaningCost":    &w.CleaningCost,
		"otherCosts":      &w.OtherCosts,
		"soldPrice":       &w.SoldPrice,
	}
	for f := range in.Nulls {
		if p, ok := strs[f]; ok {
			*p = ""
		}
		if p, ok := money[f]; ok {
			*p = decimal.NullDecimal{}
		}
		switch f {
		case "purchaseDate":
			w.PurchaseDate = nil
		case "soldDate":
			w.SoldDate = nil
		case "tags":
			w.Tags = []string{}
		case "aiRecommendation":
			w.AIRecommendation = ""
		case "aiConfidence":
			w.AIConfidence = nil
		}
	}
}

// NormalizeTags trims, drops empties and removes case-insensitive
// duplicates while keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		out = append(out, t)
	}
	return out
}

type EventType string

const (
	EventCreated EventType = "watch.created"
	EventUpdated EventType = "watch.updated"
	EventDeleted EventType = "watch.deleted"
	EventSold    EventType = "watch.sold"
)

// WatchEvent is published after a successful write.
type WatchEvent struct {
	Type      EventType `json:"type"`
	WatchID   string    `json:"watchId"`
	Brand     string    `json:"brand,omitempty"`
	Model     string    `json:"model,omitempty"`
	Status    Status    `json:"status,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
