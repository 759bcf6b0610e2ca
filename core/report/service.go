package report

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/grading"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/core/subject"
)

type Service struct {
	stRepo  student.Repository
	subRepo subject.Repository
	grRepo  grade.Repository
}

func NewService(stRepo student.Repository, subRepo subject.Repository, grRepo grade.Repository) *Service {
	return &Service{
		stRepo:  stRepo,
		subRepo: subRepo,
		grRepo:  grRepo,
	}
}

// StudentAverage is the mean score of a student for a term of a year, 0 without grades.
func (svc *Service) StudentAverage(ctx context.Context, studentID int, term string, year int) (float64, error) {
	if _, err := svc.stRepo.GetStudentByID(ctx, studentID); err != nil {
		return 0, err
	}
	grades, err := svc.grRepo.FindByStudentTermYear(ctx, studentID, term, year)
	if err != nil {
		return 0, errors.Wrap(err, "finding student grades")
	}
	return Average(grades), nil
}

// ClassAverage is the mean score over every grade of a class for a term of a year, 0 without grades.
func (svc *Service) ClassAverage(ctx context.Context, classLevel, term string, year int) (float64, error) {
	grades, err := svc.grRepo.FindByClassTermYear(ctx, classLevel, term, year)
	if err != nil {
		return 0, errors.Wrap(err, "finding class grades")
	}
	return Average(grades), nil
}

func (svc *Service) Ranking(ctx context.Context, period core.Period) (RankingReport, error) {
	defer observe("ranking")()

	students, err := svc.stRepo.QueryStudents(ctx, &student.QueryFilter{ClassLevel: period.ClassLevel}, student.ClassOrdering)
	if err != nil {
		return RankingReport{}, errors.Wrap(err, "querying students")
	}
	grades, err := svc.grRepo.FindByClassTermYear(ctx, period.ClassLevel, period.Term, period.Year)
	if err != nil {
		return RankingReport{}, errors.Wrap(err, "finding class grades")
	}

	rankings := Rank(students, grades)
	return RankingReport{
		Period:    period,
		ClassName: core.ClassName(period.ClassLevel),
		Rankings:  rankings,
		Stats:     Statistics(len(students), rankings),
	}, nil
}

// SubjectPerformance returns statistics for each subject of a class having grades, ordered by subject name.
func (svc *Service) SubjectPerformance(ctx context.Context, period core.Period) ([]SubjectStats, error) {
	defer observe("subjects")()

	subjects, err := svc.subRepo.QuerySubjects(ctx, &subject.QueryFilter{ClassLevel: period.ClassLevel}, subject.ClassOrdering)
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}

	result := make([]SubjectStats, 0, len(subjects))
	for _, sub := range subjects {
		grades, err := svc.grRepo.FindBySubjectClassTermYear(ctx, sub.ID, period.ClassLevel, period.Term, period.Year)
		if err != nil {
			return nil, errors.Wrapf(err, "finding grades of subject %d", sub.ID)
		}
		if stats, ok := SubjectStatistics(sub, grades); ok {
			result = append(result, stats)
		}
	}
	return result, nil
}

// Dashboard summarizes every class level for a term of a year.
func (svc *Service) Dashboard(ctx context.Context, term string, year int) (Dashboard, error) {
	defer observe("dashboard")()

	dash := Dashboard{Term: term, Year: year, Classes: make([]ClassSummary, 0, len(core.ClassLevels))}
	for _, lvl := range core.ClassLevels {
		stCount, err := svc.stRepo.CountStudents(ctx, lvl)
		if err != nil {
			return Dashboard{}, errors.Wrap(err, "counting students")
		}
		subCount, err := svc.subRepo.CountSubjects(ctx, lvl)
		if err != nil {
			return Dashboard{}, errors.Wrap(err, "counting subjects")
		}
		grades, err := svc.grRepo.FindByClassTermYear(ctx, lvl, term, year)
		if err != nil {
			return Dashboard{}, errors.Wrap(err, "finding class grades")
		}
		dash.Classes = append(dash.Classes, ClassSummary{
			ClassLevel:   lvl,
			ClassName:    core.ClassName(lvl),
			StudentCount: stCount,
			SubjectCount: subCount,
			TotalGrades:  len(grades),
			AverageScore: grading.Round2(Average(grades)),
		})
	}
	return dash, nil
}
