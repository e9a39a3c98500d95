package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"watchflip/internal/domain"
)

// Violation codes.
const (
	CodeRequired         = "required"
	CodePositive         = "must_be_positive"
	CodeNonNegative      = "must_be_non_negative"
	CodeInvalidStatus    = "invalid_status"
	CodeInvalidRecommend = "invalid_recommendation"
	CodeOutOfRange       = "out_of_range"
	CodeInvalidDate      = "invalid_date"
	CodeTooLong          = "too_long"
	CodeSoldNeedsPrice   = "sold_requires_price"
	CodeSoldOnlyWhenSold = "sold_fields_require_sold_status"
	CodeInvalid          = "invalid"
)

// Violations maps a field name to a violation code.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Error wraps Violations so services can return them as an error.
type Error struct {
	Violations Violations
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Violations))
	for k := range e.Violations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Violations[k]
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Err returns nil when v is empty.
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	return &Error{Violations: v}
}

const maxText = 2000

func requiredStr(field string, s *string, create bool, v Violations) {
	if s == nil {
		if create {
			v[field] = CodeRequired
		}
		return
	}
	if strings.TrimSpace(*s) == "" {
		v[field] = CodeRequired
	}
}

func text(field string, s *string, max int, v Violations) {
	if s != nil && len(*s) > max {
		v[field] = CodeTooLong
	}
}

func positive(field string, d *decimal.Decimal, v Violations) {
	if d != nil && !d.IsPositive() {
		v[field] = CodePositive
	}
}

func nonNegative(field string, d *decimal.Decimal, v Violations) {
	if d != nil && d.IsNegative() {
		v[field] = CodeNonNegative
	}
}

func dateStr(field string, s *string, v Violations) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return
	}
	if _, err := domain.ParseDate(*s); err != nil {
		v[field] = CodeInvalidDate
	}
}

// Watch checks a create (create=true) or a partial update. It only looks at
// the fields present in in; cross-field rules that need the stored record
// live in Linkage.
func Watch(in domain.WatchInput, create bool) Violations {
	v := Violations{}
	requiredStr("brand", in.Brand, create, v)
	requiredStr("model", in.Model, create, v)
	text("brand", in.Brand, 100, v)
	text("model", in.Model, 100, v)
	text("referenceNumber", in.ReferenceNumber, 100, v)
	text("title", in.Title, 300, v)
	text("description", in.Description, maxText*5, v)
	text("conditionNotes", in.ConditionNotes, maxText, v)
	text("notes", in.Notes, maxText, v)

	if in.PurchasePrice == nil {
		if create {
			v["purchasePrice"] = CodeRequired
		}
	} else {
		positive("purchasePrice", in.PurchasePrice, v)
	}
	dateStr("purchaseDate", in.PurchaseDate, v)
	dateStr("soldDate", in.SoldDate, v)

	nonNegative("revenueAsIs", in.RevenueAsIs, v)
	nonNegative("revenueCleaned", in.RevenueCleaned, v)
	nonNegative("revenueServiced", in.RevenueServiced, v)
	nonNegative("serviceCost", in.ServiceCost, v)
	nonNegative("cleaningCost", in.CleaningCost, v)
	nonNegative("otherCosts", in.OtherCosts, v)
	positive("soldPrice", in.SoldPrice, v)

	if in.Status != nil && !in.Status.Valid() {
		v["status"] = CodeInvalidStatus
	}
	if in.AIRecommendation != nil && *in.AIRecommendation != "" && !in.AIRecommendation.Valid() {
		v["aiRecommendation"] = CodeInvalidRecommend
	}
	if in.AIConfidence != nil && (*in.AIConfidence < 0 || *in.AIConfidence > 100) {
		v["aiConfidence"] = CodeOutOfRange
	}
	for _, f := range domain.RequiredFields {
		if in.IsNull(f) {
			v[f] = CodeRequired
		}
	}
	for i, t := range in.Tags {
		if _, ok := Tag(t); !ok && strings.TrimSpace(t) != "" {
			v[fmt.Sprintf("tags[%d]", i)] = CodeOutOfRange
		}
	}
	return v
}

// Linkage checks the merged record: a sold watch needs a sold price, and
// sold date or price on an unsold watch is rejected.
func Linkage(w domain.Watch) Violations {
	v := Violations{}
	if w.Status == domain.StatusSold {
		if !w.SoldPrice.Valid {
			v["soldPrice"] = CodeSoldNeedsPrice
		}
		return v
	}
	if w.SoldPrice.Valid {
		v["soldPrice"] = CodeSoldOnlyWhenSold
	}
	if w.SoldDate != nil {
		v["soldDate"] = CodeSoldOnlyWhenSold
	}
	return v
}

// Bulk validates a bulk edit patch.
func Bulk(p domain.BulkPatch) Violations {
	v := Violations{}
	if p.Empty() {
		v["patch"] = CodeRequired
	}
	if p.Status != nil && !p.Status.Valid() {
		v["status"] = CodeInvalidStatus
	}
	nonNegative("serviceCost", p.ServiceCost, v)
	nonNegative("cleaningCost", p.CleaningCost, v)
	nonNegative("otherCosts", p.OtherCosts, v)
	return v
}
