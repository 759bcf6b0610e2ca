package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLetterAndPoints(t *testing.T) {
	tests := []struct {
		score      float64
		wantLetter string
		wantPoints float64
	}{
		{score: 100, wantLetter: LetterA, wantPoints: 4.0},
		{score: 80, wantLetter: LetterA, wantPoints: 4.0},
		{score: 79.99, wantLetter: LetterB, wantPoints: 3.0},
		{score: 70, wantLetter: LetterB, wantPoints: 3.0},
		{score: 69.99, wantLetter: LetterC, wantPoints: 2.0},
		{score: 60, wantLetter: LetterC, wantPoints: 2.0},
		{score: 59.99, wantLetter: LetterD, wantPoints: 1.0},
		{score: 50, wantLetter: LetterD, wantPoints: 1.0},
		{score: 49.99, wantLetter: LetterF, wantPoints: 0.0},
		{score: 0, wantLetter: LetterF, wantPoints: 0.0},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.wantLetter, Letter(tt.score), "Letter(%v)", tt.score)
		assert.Equalf(t, tt.wantPoints, Points(tt.score), "Points(%v)", tt.score)
	}
}

func TestPerformanceLevel(t *testing.T) {
	assert.Equal(t, "excellent", PerformanceLevel(85))
	assert.Equal(t, "very good", PerformanceLevel(70))
	assert.Equal(t, "good", PerformanceLevel(65.5))
	assert.Equal(t, "satisfactory", PerformanceLevel(50))
	assert.Equal(t, "needs improvement", PerformanceLevel(12))
}

func TestRound2(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{name: "repeating", in: (70.0 + 71 + 71) / 3, want: 70.67},
		{name: "round down", in: 65.554, want: 65.55},
		{name: "integral", in: 85, want: 85},
		{name: "half up", in: 0.125, want: 0.13},
		{name: "zero", in: 0, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Round2(tt.in))
		})
	}
}
