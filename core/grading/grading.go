// Package grading maps numeric scores to letters and grade points.
// Buckets are evaluated top-down and are half-open: [80,100] A, [70,80) B, [60,70) C, [50,60) D, [0,50) F.
package grading

import "math"

const (
	LetterA = "A"
	LetterB = "B"
	LetterC = "C"
	LetterD = "D"
	LetterF = "F"
)

type bucket struct {
	min    float64
	letter string
	points float64
	level  string
}

var buckets = []bucket{
	{min: 80, letter: LetterA, points: 4.0, level: "excellent"},
	{min: 70, letter: LetterB, points: 3.0, level: "very good"},
	{min: 60, letter: LetterC, points: 2.0, level: "good"},
	{min: 50, letter: LetterD, points: 1.0, level: "satisfactory"},
	{min: math.Inf(-1), letter: LetterF, points: 0.0, level: "needs improvement"},
}

func find(score float64) bucket {
	for _, b := range buckets {
		if score >= b.min {
			return b
		}
	}
	return buckets[len(buckets)-1]
}

// Letter returns the grade letter of score. score is expected in [0,100].
func Letter(score float64) string {
	return find(score).letter
}

// Points returns the grade points of score.
func Points(score float64) float64 {
	return find(score).points
}

// PerformanceLevel describes an average score in words.
func PerformanceLevel(average float64) string {
	return find(average).level
}

// Round2 rounds x to 2 decimal places, halves away from zero.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
