package report

import (
	"sort"

	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/grading"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/core/subject"
)

// Average is the unrounded mean score of grades, 0 when there are none.
func Average(grades []grade.Grade) float64 {
	if len(grades) == 0 {
		return 0
	}
	var sum float64
	for _, g := range grades {
		sum += g.Score
	}
	return sum / float64(len(grades))
}

// Rank ranks students by average score, best first.
//
// students must be ordered by name: equal averages keep that order.
// Students without grades are left out. Ranks are sequential, ties included.
func Rank(students []student.Student, grades []grade.Grade) []Ranking {
	byStudent := grade.GroupByStudent(grades)

	rankings := make([]Ranking, 0, len(students))
	for _, st := range students {
		sg := byStudent[st.ID]
		if len(sg) == 0 {
			continue
		}
		var total, points float64
		for _, g := range sg {
			total += g.Score
			points += g.Points()
		}
		n := float64(len(sg))
		rankings = append(rankings, Ranking{
			Student:            st,
			TotalMarks:         total,
			AverageScore:       grading.Round2(total / n),
			AverageGradePoints: grading.Round2(points / n),
			SubjectCount:       len(sg),
			Grades:             grade.NewViews(sg),
		})
	}

	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].AverageScore > rankings[j].AverageScore
	})
	for i := range rankings {
		rankings[i].Rank = i + 1
	}
	return rankings
}

// Statistics summarizes ranked students of a class of totalStudents students.
func Statistics(totalStudents int, rankings []Ranking) ClassStats {
	stats := ClassStats{TotalStudents: totalStudents, StudentsWithGrades: len(rankings)}
	if len(rankings) == 0 {
		return stats
	}
	var sum float64
	for _, r := range rankings {
		sum += r.AverageScore
	}
	stats.ClassAverage = grading.Round2(sum / float64(len(rankings)))
	stats.HighestScore = rankings[0].AverageScore
	stats.LowestScore = rankings[len(rankings)-1].AverageScore
	return stats
}

// SubjectStatistics summarizes the grades of one subject. ok is false when there are none.
func SubjectStatistics(sub subject.Subject, grades []grade.Grade) (stats SubjectStats, ok bool) {
	if len(grades) == 0 {
		return SubjectStats{}, false
	}
	stats = SubjectStats{
		Subject: sub,
		Count:   len(grades),
		Average: grading.Round2(Average(grades)),
		Highest: grades[0].Score,
		Lowest:  grades[0].Score,
	}
	for _, g := range grades {
		if g.Score > stats.Highest {
			stats.Highest = g.Score
		}
		if g.Score < stats.Lowest {
			stats.Lowest = g.Score
		}
		stats.Distribution.add(g.Letter())
	}
	return stats, true
}
