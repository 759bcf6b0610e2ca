package main

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/core/subject"
)

var sampleStudents = []student.NewStudent{
	{AdmissionNo: "JS7-001", Name: "Alice Johnson", ClassLevel: core.ClassLevel7},
	{AdmissionNo: "JS7-002", Name: "Bob Smith", ClassLevel: core.ClassLevel7},
	{AdmissionNo: "JS7-003", Name: "Carol Davis", ClassLevel: core.ClassLevel7},
	{AdmissionNo: "JS7-004", Name: "David Wilson", ClassLevel: core.ClassLevel7},
	{AdmissionNo: "JS7-005", Name: "Emma Brown", ClassLevel: core.ClassLevel7},
	{AdmissionNo: "JS7-006", Name: "Frank Miller", ClassLevel: core.ClassLevel7},
	{AdmissionNo: "JS7-007", Name: "Grace Taylor", ClassLevel: core.ClassLevel7},
	{AdmissionNo: "JS7-008", Name: "Henry Anderson", ClassLevel: core.ClassLevel7},
	{AdmissionNo: "JS7-009", Name: "Ivy Thomas", ClassLevel: core.ClassLevel7},
	{AdmissionNo: "JS7-010", Name: "Jack Jackson", ClassLevel: core.ClassLevel7},

	{AdmissionNo: "JS8-001", Name: "Kate White", ClassLevel: core.ClassLevel8},
	{AdmissionNo: "JS8-002", Name: "Liam Harris", ClassLevel: core.ClassLevel8},
	{AdmissionNo: "JS8-003", Name: "Maya Martin", ClassLevel: core.ClassLevel8},
	{AdmissionNo: "JS8-004", Name: "Noah Thompson", ClassLevel: core.ClassLevel8},
	{AdmissionNo: "JS8-005", Name: "Olivia Garcia", ClassLevel: core.ClassLevel8},
	{AdmissionNo: "JS8-006", Name: "Peter Martinez", ClassLevel: core.ClassLevel8},
	{AdmissionNo: "JS8-007", Name: "Quinn Robinson", ClassLevel: core.ClassLevel8},
	{AdmissionNo: "JS8-008", Name: "Ruby Clark", ClassLevel: core.ClassLevel8},
	{AdmissionNo: "JS8-009", Name: "Samuel Rodriguez", ClassLevel: core.ClassLevel8},
	{AdmissionNo: "JS8-010", Name: "Tina Lewis", ClassLevel: core.ClassLevel8},

	{AdmissionNo: "JS9-001", Name: "Uma Lee", ClassLevel: core.ClassLevel9},
	{AdmissionNo: "JS9-002", Name: "Victor Walker", ClassLevel: core.ClassLevel9},
	{AdmissionNo: "JS9-003", Name: "Wendy Hall", ClassLevel: core.ClassLevel9},
	{AdmissionNo: "JS9-004", Name: "Xavier Allen", ClassLevel: core.ClassLevel9},
	{AdmissionNo: "JS9-005", Name: "Yara Young", ClassLevel: core.ClassLevel9},
	{AdmissionNo: "JS9-006", Name: "Zoe King", ClassLevel: core.ClassLevel9},
	{AdmissionNo: "JS9-007", Name: "Aaron Wright", ClassLevel: core.ClassLevel9},
	{AdmissionNo: "JS9-008", Name: "Bella Lopez", ClassLevel: core.ClassLevel9},
	{AdmissionNo: "JS9-009", Name: "Caleb Hill", ClassLevel: core.ClassLevel9},
	{AdmissionNo: "JS9-010", Name: "Diana Scott", ClassLevel: core.ClassLevel9},
}

var sampleSubjects = map[string][]string{
	core.ClassLevel7: {
		"Mathematics", "English Language", "Kiswahili", "Science", "Social Studies",
		"Religious Education", "Creative Arts", "Physical Education",
	},
	core.ClassLevel8: {
		"Mathematics", "English Language", "Kiswahili", "Integrated Science", "Social Studies",
		"Religious Education", "Business Studies", "Agriculture", "Computer Studies",
	},
	core.ClassLevel9: {
		"Mathematics", "English Language", "Kiswahili", "Biology", "Chemistry", "Physics", "History",
		"Geography", "Religious Education", "Business Studies", "Agriculture", "Computer Studies",
	},
}

var randomScore = func() float64 { // mockable
	n := rand.IntN(100)
	switch {
	case n < 10:
		return float64(80 + rand.IntN(20))
	case n < 30:
		return float64(60 + rand.IntN(20))
	case n < 60:
		return float64(40 + rand.IntN(20))
	case n < 85:
		return float64(20 + rand.IntN(20))
	default:
		return float64(rand.IntN(20))
	}
}

// seed adds the sample students and subjects that do not exist yet.
func (cli *commandLine) seed(withGrades bool, year int) error {
	ctx := context.Background()

	var created int
	for _, ns := range sampleStudents {
		_, err := cli.studentSvc.GetByAdmissionNo(ctx, ns.AdmissionNo)
		if err == nil {
			continue
		}
		if !core.IsNotFound(err) {
			return errors.Wrapf(err, "finding student %s", ns.AdmissionNo)
		}
		if _, err = cli.studentSvc.Create(ctx, ns); err != nil {
			return errors.Wrapf(err, "creating student %s", ns.AdmissionNo)
		}
		created++
	}
	fmt.Fprintf(cli.out, "students: %d created\n", created)

	created = 0
	for _, lvl := range core.ClassLevels {
		existing, err := cli.subjectSvc.QueryByClass(ctx, lvl)
		if err != nil {
			return errors.Wrap(err, "querying subjects")
		}
		names := make(map[string]bool, len(existing))
		for _, sub := range existing {
			names[sub.Name] = true
		}
		for _, name := range sampleSubjects[lvl] {
			if names[name] {
				continue
			}
			if _, err = cli.subjectSvc.Create(ctx, subject.NewSubject{Name: name, ClassLevel: lvl}); err != nil {
				return errors.Wrapf(err, "creating subject %s", name)
			}
			created++
		}
	}
	fmt.Fprintf(cli.out, "subjects: %d created\n", created)

	if !withGrades {
		return nil
	}
	if !core.IsYear(year) {
		return errors.Errorf("year must be between %d and %d", core.MinYear, core.MaxYear)
	}
	return cli.seedGrades(ctx, year)
}

// seedGrades saves a random grade for every student and subject of each class, for every term of year.
func (cli *commandLine) seedGrades(ctx context.Context, year int) error {
	var saved int
	for _, lvl := range core.ClassLevels {
		students, err := cli.studentSvc.QueryByClass(ctx, lvl)
		if err != nil {
			return errors.Wrap(err, "querying students")
		}
		subjects, err := cli.subjectSvc.QueryByClass(ctx, lvl)
		if err != nil {
			return errors.Wrap(err, "querying subjects")
		}
		if len(students) == 0 || len(subjects) == 0 {
			continue
		}

		for _, term := range core.Terms {
			bs := grade.BatchSave{Period: core.Period{ClassLevel: lvl, Term: term, Year: year}}
			for _, st := range students {
				for _, sub := range subjects {
					bs.Grades = append(bs.Grades, grade.Entry{
						StudentID: st.ID,
						SubjectID: sub.ID,
						Score:     grade.NewRawScore(fmt.Sprintf("%.0f", randomScore())),
					})
				}
			}
			n, err := cli.gradeSvc.SaveBatch(ctx, bs)
			if err != nil {
				return errors.Wrapf(err, "saving grades of %s term %s", core.ClassName(lvl), term)
			}
			saved += n
		}
	}
	fmt.Fprintf(cli.out, "grades: %d saved for %d\n", saved, year)
	return nil
}
