package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grading"
)

// RankingColumns are the headers of a RankingTable.
var RankingColumns = []string{
	"Rank",
	"Student Name",
	"Admission Number",
	"Total Marks",
	"Average Score",
	"Grade Points",
	"Subject Count",
	"Grade",
}

type RankingRow struct {
	Rank         int
	Name         string
	AdmissionNo  string
	TotalMarks   float64
	AverageScore float64
	GradePoints  float64
	SubjectCount int
	Letter       string
}

// Cells formats the row in RankingColumns order.
func (r RankingRow) Cells() []string {
	return []string{
		strconv.Itoa(r.Rank),
		r.Name,
		r.AdmissionNo,
		strconv.FormatFloat(r.TotalMarks, 'f', 0, 64),
		fmt.Sprintf("%.2f%%", r.AverageScore),
		fmt.Sprintf("%.2f", r.GradePoints),
		strconv.Itoa(r.SubjectCount),
		r.Letter,
	}
}

// RankingTable is a ranking report shaped for renderers.
type RankingTable struct {
	SchoolName  string
	Title       string
	Subtitle    string
	Period      core.Period
	GeneratedAt time.Time
	Rows        []RankingRow
	Stats       ClassStats
	Performance string
}

func NewRankingTable(schoolName string, rep RankingReport, generatedAt time.Time) RankingTable {
	rows := make([]RankingRow, 0, len(rep.Rankings))
	for _, r := range rep.Rankings {
		rows = append(rows, RankingRow{
			Rank:         r.Rank,
			Name:         r.Student.Name,
			AdmissionNo:  r.Student.AdmissionNo,
			TotalMarks:   r.TotalMarks,
			AverageScore: r.AverageScore,
			GradePoints:  r.AverageGradePoints,
			SubjectCount: r.SubjectCount,
			Letter:       r.Letter(),
		})
	}
	return RankingTable{
		SchoolName:  schoolName,
		Title:       fmt.Sprintf("%s Ranking Report", core.ClassName(rep.ClassLevel)),
		Subtitle:    fmt.Sprintf("Term %s, Academic Year %d", rep.Term, rep.Year),
		Period:      rep.Period,
		GeneratedAt: generatedAt,
		Rows:        rows,
		Stats:       rep.Stats,
		Performance: grading.PerformanceLevel(rep.Stats.ClassAverage),
	}
}

// Summary lists the class statistics as label/value pairs.
func (t RankingTable) Summary() [][2]string {
	highest, lowest := "N/A", "N/A"
	if len(t.Rows) > 0 {
		highest = fmt.Sprintf("%.2f%%", t.Stats.HighestScore)
		lowest = fmt.Sprintf("%.2f%%", t.Stats.LowestScore)
	}
	return [][2]string{
		{"Total Students", strconv.Itoa(t.Stats.TotalStudents)},
		{"Students Ranked", strconv.Itoa(t.Stats.StudentsWithGrades)},
		{"Class Average", fmt.Sprintf("%.2f%%", t.Stats.ClassAverage)},
		{"Highest Score", highest},
		{"Lowest Score", lowest},
	}
}

// FileName names a download of the table, ext without the dot.
func (t RankingTable) FileName(ext string) string {
	return fmt.Sprintf("ranking_grade_%s_term_%s_%d.%s", t.Period.ClassLevel, t.Period.Term, t.Period.Year, ext)
}
