package rendersvc

import (
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/gradebook/core/report"
)

const sheetName = "Ranking Report"

// column widths in RankingColumns order
var excelWidths = []float64{8, 25, 18, 12, 15, 12, 14, 8}

// Excel renders the ranking as an xlsx workbook: title rows, the table from row 4, then the summary.
func Excel(t report.RankingTable) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, errors.Wrap(err, "naming sheet")
	}
	cell := func(col, row int) string {
		name, _ := excelize.CoordinatesToCellName(col, row)
		return name
	}
	lastCol := len(report.RankingColumns)

	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, errors.Wrap(err, "creating style")
	}
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, errors.Wrap(err, "creating style")
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"667EEA"}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating style")
	}

	title := t.Title + " - " + t.Subtitle
	if err = f.SetCellValue(sheetName, "A1", title); err != nil {
		return nil, errors.Wrap(err, "writing title")
	}
	if err = f.MergeCell(sheetName, "A1", cell(lastCol, 1)); err != nil {
		return nil, errors.Wrap(err, "merging title")
	}
	if err = f.SetCellStyle(sheetName, "A1", "A1", titleStyle); err != nil {
		return nil, errors.Wrap(err, "styling title")
	}
	if err = f.SetCellValue(sheetName, "A2", generatedOn(t)); err != nil {
		return nil, errors.Wrap(err, "writing date")
	}

	const headerRow = 4
	for i, col := range report.RankingColumns {
		if err = f.SetCellValue(sheetName, cell(i+1, headerRow), col); err != nil {
			return nil, errors.Wrap(err, "writing header")
		}
		colName, _ := excelize.ColumnNumberToName(i + 1)
		if err = f.SetColWidth(sheetName, colName, colName, excelWidths[i]); err != nil {
			return nil, errors.Wrap(err, "sizing column")
		}
	}
	if err = f.SetCellStyle(sheetName, cell(1, headerRow), cell(lastCol, headerRow), headerStyle); err != nil {
		return nil, errors.Wrap(err, "styling header")
	}

	for i, r := range t.Rows {
		values := []interface{}{r.Rank, r.Name, r.AdmissionNo, r.TotalMarks, r.AverageScore, r.GradePoints, r.SubjectCount, r.Letter}
		if err = f.SetSheetRow(sheetName, cell(1, headerRow+1+i), &values); err != nil {
			return nil, errors.Wrapf(err, "writing row %d", i+1)
		}
	}

	row := headerRow + len(t.Rows) + 2
	if err = f.SetCellValue(sheetName, cell(1, row), "Summary Statistics:"); err != nil {
		return nil, errors.Wrap(err, "writing summary")
	}
	if err = f.SetCellStyle(sheetName, cell(1, row), cell(1, row), boldStyle); err != nil {
		return nil, errors.Wrap(err, "styling summary")
	}
	for _, item := range t.Summary() {
		row++
		values := []interface{}{item[0] + ":", item[1]}
		if err = f.SetSheetRow(sheetName, cell(1, row), &values); err != nil {
			return nil, errors.Wrap(err, "writing summary")
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "writing workbook")
	}
	return buf.Bytes(), nil
}
