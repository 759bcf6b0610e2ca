package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/report"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/core/subject"
	inmemdb "github.com/trezcool/gradebook/storage/database/inmem"
	testutil "github.com/trezcool/gradebook/tests"
)

type fixture struct {
	stRepo  student.Repository
	subRepo subject.Repository
	grRepo  grade.Repository
	svc     *report.Service
}

func newFixture() *fixture {
	db := inmemdb.Open()
	f := &fixture{
		stRepo:  inmemdb.NewStudentRepository(db),
		subRepo: inmemdb.NewSubjectRepository(db),
		grRepo:  inmemdb.NewGradeRepository(db),
	}
	f.svc = report.NewService(f.stRepo, f.subRepo, f.grRepo)
	return f
}

func TestService_Ranking(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	period := core.Period{ClassLevel: "8", Term: "1", Year: 2024}

	rep, err := f.svc.Ranking(ctx, period)
	require.NoError(t, err)
	assert.Empty(t, rep.Rankings)
	assert.Equal(t, report.ClassStats{}, rep.Stats)

	juma := testutil.CreateStudent(t, f.stRepo, "JS8-001", "Juma", "8")
	neema := testutil.CreateStudent(t, f.stRepo, "JS8-002", "Neema", "8")
	testutil.CreateStudent(t, f.stRepo, "JS8-003", "Zawadi", "8")
	other := testutil.CreateStudent(t, f.stRepo, "JS9-001", "Other", "9")
	math := testutil.CreateSubject(t, f.subRepo, "Mathematics", "8")
	sci := testutil.CreateSubject(t, f.subRepo, "Science", "8")

	testutil.CreateGrade(t, f.grRepo, juma.ID, math.ID, "1", 2024, 40)
	testutil.CreateGrade(t, f.grRepo, juma.ID, sci.ID, "1", 2024, 50)
	testutil.CreateGrade(t, f.grRepo, neema.ID, math.ID, "1", 2024, 85)
	testutil.CreateGrade(t, f.grRepo, neema.ID, sci.ID, "1", 2024, 95)
	testutil.CreateGrade(t, f.grRepo, neema.ID, sci.ID, "2", 2024, 10)
	testutil.CreateGrade(t, f.grRepo, other.ID, math.ID, "1", 2024, 100)

	rep, err = f.svc.Ranking(ctx, period)
	require.NoError(t, err)
	assert.Equal(t, "Grade 8", rep.ClassName)
	if assert.Len(t, rep.Rankings, 2) {
		assert.Equal(t, "Neema", rep.Rankings[0].Student.Name)
		assert.Equal(t, 1, rep.Rankings[0].Rank)
		assert.Equal(t, 90.0, rep.Rankings[0].AverageScore)
		assert.Equal(t, "Juma", rep.Rankings[1].Student.Name)
		assert.Equal(t, 45.0, rep.Rankings[1].AverageScore)
	}
	assert.Equal(t, report.ClassStats{
		TotalStudents:      3,
		StudentsWithGrades: 2,
		ClassAverage:       67.5,
		HighestScore:       90,
		LowestScore:        45,
	}, rep.Stats)

	avg, err := f.svc.StudentAverage(ctx, neema.ID, "1", 2024)
	require.NoError(t, err)
	assert.Equal(t, 90.0, avg)

	avg, err = f.svc.StudentAverage(ctx, neema.ID, "3", 2024)
	require.NoError(t, err)
	assert.Equal(t, 0.0, avg)

	_, err = f.svc.StudentAverage(ctx, 999, "1", 2024)
	assert.Equal(t, student.ErrNotFound, err)

	avg, err = f.svc.ClassAverage(ctx, "8", "1", 2024)
	require.NoError(t, err)
	assert.Equal(t, 67.5, avg)
}

func TestService_SubjectPerformance(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := testutil.CreateStudent(t, f.stRepo, "JS7-001", "Amani", "7")
	b := testutil.CreateStudent(t, f.stRepo, "JS7-002", "Baraka", "7")
	eng := testutil.CreateSubject(t, f.subRepo, "English", "7")
	art := testutil.CreateSubject(t, f.subRepo, "Art", "7")
	testutil.CreateSubject(t, f.subRepo, "Music", "7")

	testutil.CreateGrade(t, f.grRepo, a.ID, eng.ID, "1", 2024, 81)
	testutil.CreateGrade(t, f.grRepo, b.ID, eng.ID, "1", 2024, 49)
	testutil.CreateGrade(t, f.grRepo, b.ID, art.ID, "1", 2024, 66)

	stats, err := f.svc.SubjectPerformance(ctx, core.Period{ClassLevel: "7", Term: "1", Year: 2024})
	require.NoError(t, err)
	if assert.Len(t, stats, 2) {
		assert.Equal(t, "Art", stats[0].Subject.Name)
		assert.Equal(t, report.Distribution{C: 1}, stats[0].Distribution)
		assert.Equal(t, "English", stats[1].Subject.Name)
		assert.Equal(t, 2, stats[1].Count)
		assert.Equal(t, 65.0, stats[1].Average)
		assert.Equal(t, 81.0, stats[1].Highest)
		assert.Equal(t, 49.0, stats[1].Lowest)
	}
}

func TestService_Dashboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := testutil.CreateStudent(t, f.stRepo, "JS9-001", "Amani", "9")
	testutil.CreateStudent(t, f.stRepo, "JS9-002", "Baraka", "9")
	eng := testutil.CreateSubject(t, f.subRepo, "English", "9")
	testutil.CreateGrade(t, f.grRepo, a.ID, eng.ID, "2", 2025, 70.5)

	dash, err := f.svc.Dashboard(ctx, "2", 2025)
	require.NoError(t, err)
	if assert.Len(t, dash.Classes, 3) {
		assert.Equal(t, report.ClassSummary{ClassLevel: "7", ClassName: "Grade 7"}, dash.Classes[0])
		assert.Equal(t, report.ClassSummary{
			ClassLevel:   "9",
			ClassName:    "Grade 9",
			StudentCount: 2,
			SubjectCount: 1,
			TotalGrades:  1,
			AverageScore: 70.5,
		}, dash.Classes[2])
	}
}

func TestNewRankingTable(t *testing.T) {
	rep := report.RankingReport{
		Period: core.Period{ClassLevel: "8", Term: "1", Year: 2024},
		Rankings: []report.Ranking{
			{Rank: 1, Student: student.Student{Name: "Neema", AdmissionNo: "JS8-002"}, TotalMarks: 180, AverageScore: 90, AverageGradePoints: 4, SubjectCount: 2},
			{Rank: 2, Student: student.Student{Name: "Juma", AdmissionNo: "JS8-001"}, TotalMarks: 90, AverageScore: 45, AverageGradePoints: 0, SubjectCount: 2},
		},
		Stats: report.ClassStats{TotalStudents: 3, StudentsWithGrades: 2, ClassAverage: 67.5, HighestScore: 90, LowestScore: 45},
	}

	table := report.NewRankingTable("Masomo School", rep, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "Grade 8 Ranking Report", table.Title)
	assert.Equal(t, "Term 1, Academic Year 2024", table.Subtitle)
	assert.Equal(t, "good", table.Performance)
	assert.Equal(t, "ranking_grade_8_term_1_2024.xlsx", table.FileName("xlsx"))
	if assert.Len(t, table.Rows, 2) {
		assert.Equal(t, []string{"1", "Neema", "JS8-002", "180", "90.00%", "4.00", "2", "A"}, table.Rows[0].Cells())
		assert.Equal(t, "F", table.Rows[1].Letter)
	}
	assert.Len(t, table.Rows[0].Cells(), len(report.RankingColumns))
	assert.Contains(t, table.Summary(), [2]string{"Class Average", "67.50%"})

	empty := report.NewRankingTable("", report.RankingReport{Period: rep.Period}, time.Now())
	assert.Contains(t, empty.Summary(), [2]string{"Highest Score", "N/A"})
}
