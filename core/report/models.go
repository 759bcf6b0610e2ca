package report

import (
	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/grading"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/core/subject"
)

// Ranking is one row of a class ranking.
type Ranking struct {
	Rank               int             `json:"rank"`
	Student            student.Student `json:"student"`
	TotalMarks         float64         `json:"total_marks"`
	AverageScore       float64         `json:"average_score"`
	AverageGradePoints float64         `json:"average_grade_points"`
	SubjectCount       int             `json:"subject_count"`
	Grades             []grade.View    `json:"grades"`
}

// Letter is the grade letter of the average score.
func (r Ranking) Letter() string {
	return grading.Letter(r.AverageScore)
}

type ClassStats struct {
	TotalStudents      int     `json:"total_students"`
	StudentsWithGrades int     `json:"students_with_grades"`
	ClassAverage       float64 `json:"class_average"`
	HighestScore       float64 `json:"highest_score"`
	LowestScore        float64 `json:"lowest_score"`
}

type RankingReport struct {
	core.Period
	ClassName string     `json:"class_name"`
	Rankings  []Ranking  `json:"rankings"`
	Stats     ClassStats `json:"class_stats"`
}

// Distribution counts grades per letter.
type Distribution struct {
	A int `json:"A"`
	B int `json:"B"`
	C int `json:"C"`
	D int `json:"D"`
	F int `json:"F"`
}

func (d *Distribution) add(letter string) {
	switch letter {
	case grading.LetterA:
		d.A++
	case grading.LetterB:
		d.B++
	case grading.LetterC:
		d.C++
	case grading.LetterD:
		d.D++
	default:
		d.F++
	}
}

type SubjectStats struct {
	Subject      subject.Subject `json:"subject"`
	Count        int             `json:"count"`
	Average      float64         `json:"average"`
	Highest      float64         `json:"highest"`
	Lowest       float64         `json:"lowest"`
	Distribution Distribution    `json:"distribution"`
}

// ClassSummary is a dashboard card of one class level.
type ClassSummary struct {
	ClassLevel   string  `json:"class_level"`
	ClassName    string  `json:"class_name"`
	StudentCount int     `json:"student_count"`
	SubjectCount int     `json:"subject_count"`
	TotalGrades  int     `json:"total_grades"`
	AverageScore float64 `json:"average_score"`
}

type Dashboard struct {
	Term    string         `json:"term"`
	Year    int            `json:"year"`
	Classes []ClassSummary `json:"classes"`
}
