// Package export renders watch collections as CSV, JSON, printable HTML
// and PDF, and parses CSV back into watch input.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"watchflip/internal/domain"
	"watchflip/internal/metrics"
)

type Variant string

const (
	Simple Variant = "simple"
	Full   Variant = "full"
)

// ParseVariant defaults to Simple.
func ParseVariant(s string) Variant {
	if strings.EqualFold(strings.TrimSpace(s), string(Full)) {
		return Full
	}
	return Simple
}

const dateLayout = "2006-01-02"

var (
	simpleHeader = []string{
		"Brand", "Model", "Purchase Price",
		"Revenue (As-Is)", "Revenue (Cleaned)", "Revenue (Serviced)",
		"Best Profit", "ROI %", "Status", "Purchase Date",
	}
	fullHeader = []string{
		"Brand", "Model", "Reference Number", "Purchase Price", "Purchase Date",
		"Revenue (As-Is)", "Revenue (Cleaned)", "Revenue (Serviced)", "Status",
		"Service Cost", "Cleaning Cost", "Other Costs", "Sold Date", "Sold Price",
		"Tags", "Notes", "Is Favorite",
	}
)

// Header returns the column names of v.
func Header(v Variant) []string {
	if v == Full {
		return append([]string(nil), fullHeader...)
	}
	return append([]string(nil), simpleHeader...)
}

// Filename is the download name for an export taken at now.
func Filename(ext string, now time.Time) string {
	return fmt.Sprintf("watch-inventory-%s.%s", now.Format(dateLayout), ext)
}

// WriteCSV always emits the header, so an empty collection is still valid.
// Every cell is quoted.
func WriteCSV(w io.Writer, ws []domain.Watch, v Variant) error {
	bw := bufio.NewWriter(w)
	if err := writeRecord(bw, Header(v)); err != nil {
		return err
	}
	for _, watch := range ws {
		var rec []string
		if v == Full {
			rec = fullRecord(watch)
		} else {
			rec = simpleRecord(watch)
		}
		if err := writeRecord(bw, rec); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeRecord(w *bufio.Writer, rec []string) error {
	for i, cell := range rec {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(cell, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\n")
	return err
}

func simpleRecord(w domain.Watch) []string {
	r := rowFor(w)
	return []string{
		r.Brand, r.Model, r.PurchasePrice,
		r.RevenueAsIs, r.RevenueCleaned, r.RevenueServiced,
		r.Profit, r.ROI, r.Status, r.PurchaseDate,
	}
}

func fullRecord(w domain.Watch) []string {
	fav := "No"
	if w.IsFavorite {
		fav = "Yes"
	}
	return []string{
		w.Brand, w.Model, w.ReferenceNumber, money(w.PurchasePrice), date(w.PurchaseDate),
		optMoney(w.RevenueAsIs), optMoney(w.RevenueCleaned), optMoney(w.RevenueServiced), string(w.Status),
		optMoney(w.ServiceCost), optMoney(w.CleaningCost), optMoney(w.OtherCosts),
		date(w.SoldDate), optMoney(w.SoldPrice),
		strings.Join(w.Tags, "; "), w.Notes, fav,
	}
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func optMoney(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return money(d.Decimal)
}

func percent(f float64) string { return fmt.Sprintf("%.1f", f) }

func date(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// ROIString formats a percentage the way exports do.
func ROIString(w domain.Watch, basis metrics.Basis) string {
	return percent(metrics.ProjectedROI(w, basis))
}
