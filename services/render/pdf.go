package rendersvc

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/report"
)

// column widths in mm, RankingColumns order; they fill an A4 page minus margins
var pdfWidths = []float64{12, 48, 30, 20, 24, 20, 20, 16}

var pdfHeaders = []string{"Rank", "Student Name", "Admission No.", "Total", "Average", "Points", "Subjects", "Grade"}

// PDF renders the ranking as an A4 portrait document.
func PDF(t report.RankingTable) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(t.Title, true)
	pdf.SetAuthor(t.SchoolName, true)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(102, 102, 102)
		pdf.CellFormat(0, 10, tr(footer(t)), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(102, 126, 234)
	pdf.CellFormat(0, 10, tr(t.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.SetTextColor(102, 102, 102)
	pdf.CellFormat(0, 6, tr(t.Subtitle), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, generatedOn(t), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(102, 126, 234)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetDrawColor(221, 221, 221)
	for i, h := range pdfHeaders {
		pdf.CellFormat(pdfWidths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(51, 51, 51)
	for i, r := range t.Rows {
		switch {
		case r.Rank == 1:
			pdf.SetFillColor(255, 243, 205)
		case r.Rank <= 3:
			pdf.SetFillColor(212, 237, 218)
		case i%2 == 1:
			pdf.SetFillColor(249, 249, 249)
		default:
			pdf.SetFillColor(255, 255, 255)
		}
		for j, c := range r.Cells() {
			pdf.CellFormat(pdfWidths[j], 7, tr(c), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, item := range t.Summary() {
		pdf.CellFormat(40, 6, item[0]+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(item[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
	pdf.MultiCell(0, 6, tr(fmt.Sprintf(
		"The class average of %.2f%% indicates %s performance.", t.Stats.ClassAverage, t.Performance,
	)), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "writing pdf")
	}
	return buf.Bytes(), nil
}
