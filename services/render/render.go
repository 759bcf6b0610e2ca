// Package rendersvc renders assembled reports to downloadable documents.
// Renderers only format what they are given; they never query or compute.
package rendersvc

import (
	"github.com/trezcool/gradebook/core/report"
)

const dateLayout = "02 Jan 2006"

const (
	ContentTypeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF   = "application/pdf"
	ContentTypeHTML  = "text/html; charset=UTF-8"
)

func generatedOn(t report.RankingTable) string {
	return "Generated on: " + t.GeneratedAt.Format(dateLayout)
}

func footer(t report.RankingTable) string {
	if t.SchoolName == "" {
		return "Generated by the school grading system"
	}
	return "Generated by " + t.SchoolName
}
