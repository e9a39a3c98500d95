package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"watchflip/internal/domain"
)

var ErrEmptyImport = errors.New("csv has no data rows")

// RowError points at the offending line, counting the header as line 1.
type RowError struct {
	Row int
	Msg string
}

func (e *RowError) Error() string { return fmt.Sprintf("row %d: %s", e.Row, e.Msg) }

type column int

const (
	colSkip column = iota
	colBrand
	colModel
	colReference
	colPurchasePrice
	colPurchaseDate
	colRevenueAsIs
	colRevenueCleaned
	colRevenueServiced
	colStatus
	colServiceCost
	colCleaningCost
	colOtherCosts
	colSoldDate
	colSoldPrice
	colTags
	colNotes
	colFavorite
)

// classify maps a header by case-insensitive substring. Order matters:
// "Revenue (Serviced)" must not fall into the service cost bucket.
func classify(h string) column {
	h = strings.ToLower(strings.TrimSpace(h))
	has := func(s string) bool { return strings.Contains(h, s) }
	switch {
	case has("brand"):
		return colBrand
	case has("model"):
		return colModel
	case has("reference"):
		return colReference
	case has("purchase price"):
		return colPurchasePrice
	case has("purchase date"):
		return colPurchaseDate
	case has("revenue") && has("as-is"):
		return colRevenueAsIs
	case has("revenue") && has("cleaned"):
		return colRevenueCleaned
	case has("revenue") && has("serviced"):
		return colRevenueServiced
	case has("status"):
		return colStatus
	case has("service cost"):
		return colServiceCost
	case has("cleaning cost"):
		return colCleaningCost
	case has("other cost"):
		return colOtherCosts
	case has("sold date"):
		return colSoldDate
	case has("sold price"):
		return colSoldPrice
	case has("tag"):
		return colTags
	case has("note"):
		return colNotes
	case has("favorite"):
		return colFavorite
	}
	return colSkip
}

// ParseCSV reads rows written by WriteCSV (either variant) or a hand-made
// sheet with similar headers. The first bad row aborts the import.
func ParseCSV(r io.Reader) ([]domain.WatchInput, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyImport
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make([]column, len(header))
	for i, h := range header {
		cols[i] = classify(strings.TrimPrefix(h, "\ufeff"))
	}

	var out []domain.WatchInput
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, &RowError{Row: line, Msg: err.Error()}
		}
		if blank(rec) {
			continue
		}
		in, err := parseRow(cols, rec)
		if err != nil {
			return nil, &RowError{Row: line, Msg: err.Error()}
		}
		out = append(out, in)
	}
	if len(out) == 0 {
		return nil, ErrEmptyImport
	}
	return out, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseRow(cols []column, rec []string) (domain.WatchInput, error) {
	var in domain.WatchInput
	status := domain.StatusNeedsService
	in.Status = &status

	for i, v := range rec {
		if i >= len(cols) {
			break
		}
		v = strings.TrimSpace(v)
		var err error
		switch cols[i] {
		case colBrand:
			in.Brand = str(v)
		case colModel:
			in.Model = str(v)
		case colReference:
			in.ReferenceNumber = str(v)
		case colPurchasePrice:
			if d, perr := decimal.NewFromString(stripMoney(v)); perr == nil && d.IsPositive() {
				in.PurchasePrice = &d
			}
		case colPurchaseDate:
			in.PurchaseDate, err = dateCell(v, "purchase date")
		case colRevenueAsIs:
			in.RevenueAsIs, err = moneyCell(v, "revenue (as-is)")
		case colRevenueCleaned:
			in.RevenueCleaned, err = moneyCell(v, "revenue (cleaned)")
		case colRevenueServiced:
			in.RevenueServiced, err = moneyCell(v, "revenue (serviced)")
		case colStatus:
			if v == "" {
				break
			}
			st, ok := domain.ParseStatus(v)
			if !ok {
				return in, fmt.Errorf("unknown status %q", v)
			}
			in.Status = &st
		case colServiceCost:
			in.ServiceCost, err = moneyCell(v, "service cost")
		case colCleaningCost:
			in.CleaningCost, err = moneyCell(v, "cleaning cost")
		case colOtherCosts:
			in.OtherCosts, err = moneyCell(v, "other costs")
		case colSoldDate:
			in.SoldDate, err = dateCell(v, "sold date")
		case colSoldPrice:
			in.SoldPrice, err = moneyCell(v, "sold price")
		case colTags:
			if v != "" {
				in.Tags = domain.NormalizeTags(strings.Split(v, ";"))
			}
		case colNotes:
			in.Notes = str(v)
		case colFavorite:
			fav := strings.EqualFold(v, "yes")
			in.IsFavorite = &fav
		}
		if err != nil {
			return in, err
		}
	}
	if in.Brand == nil || in.Model == nil || in.PurchasePrice == nil {
		return in, errors.New("missing required fields (brand, model, or purchase price)")
	}
	return in, nil
}

func str(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func stripMoney(v string) string {
	return strings.NewReplacer("$", "", ",", "").Replace(v)
}

func moneyCell(v, name string) (*decimal.Decimal, error) {
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(stripMoney(v))
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not a number", name, v)
	}
	return &d, nil
}

func dateCell(v, name string) (*string, error) {
	if v == "" {
		return nil, nil
	}
	if _, err := domain.ParseDate(v); err != nil {
		return nil, fmt.Errorf("%s: %q is not a date", name, v)
	}
	return &v, nil
}
