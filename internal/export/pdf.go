package export

import (
	"fmt"
	"io"

	"github.com/phpdave11/gofpdf"
)

var pdfColumns = []struct {
	title string
	width float64
	align string
}{
	{"Brand", 30, "L"},
	{"Model", 38, "L"},
	{"Purchase", 24, "R"},
	{"As-Is", 24, "R"},
	{"Cleaned", 24, "R"},
	{"Serviced", 24, "R"},
	{"Profit", 24, "R"},
	{"ROI %", 16, "R"},
	{"Status", 28, "L"},
	{"Purchased", 25, "L"},
}

// WritePDF renders r as a landscape A4 document.
func WritePDF(w io.Writer, r Report) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(r.Title, true)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(r.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, "Generated "+r.GeneratedAt.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	s := r.Summary
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range []string{
		fmt.Sprintf("Watches: %d", s.Count),
		fmt.Sprintf("Total investment: $%s   Projected value: $%s   Projected profit: $%s   Average ROI: %s%%",
			s.TotalInvestment, s.TotalProjectedValue, s.TotalProjectedProfit, s.AverageROI),
	} {
		pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
	}
	status := ""
	for i, c := range s.ByStatus {
		if i > 0 {
			status += "   "
		}
		status += fmt.Sprintf("%s: %d", c.Label, c.Count)
	}
	pdf.CellFormat(0, 6, status, "", 1, "L", false, 0, "")
	pdf.Ln(3)

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, col := range pdfColumns {
			pdf.CellFormat(col.width, 7, col.title, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
	}
	header()
	for _, row := range r.Rows {
		if pdf.GetY() > 190 {
			pdf.AddPage()
			header()
		}
		cells := []string{
			row.Brand, row.Model, row.PurchasePrice, row.RevenueAsIs, row.RevenueCleaned,
			row.RevenueServiced, row.Profit, row.ROI, row.StatusLabel, row.PurchaseDate,
		}
		for i, col := range pdfColumns {
			pdf.CellFormat(col.width, 6, tr(cells[i]), "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(r.Rows) == 0 {
		pdf.CellFormat(0, 6, "No watches to report.", "1", 1, "C", false, 0, "")
	}
	return pdf.Output(w)
}
