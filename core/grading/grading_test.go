package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLetter(t *testing.T) {
	tests := []struct {
		total float64
		want  string
	}{
		{100, "A+"},
		{90, "A+"}, // boundary is inclusive
		{89.999, "A"},
		{85, "A"},
		{80, "A-"},
		{75, "B+"},
		{70, "B"},
		{65, "B-"},
		{60, "C+"},
		{59.999, "C"},
		{50, "C"},
		{45, "C-"},
		{40, "D"},
		{39.999, "F"},
		{0, "F"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Letter(tt.total), "total=%v", tt.total)
	}
}

func TestCompute(t *testing.T) {
	s := Compute(45, 45)
	assert.Equal(t, 90.0, s.Total)
	assert.Equal(t, "A+", s.Letter)
	assert.Equal(t, 4.0, s.GradePoint)

	s = Compute(40, 49.999)
	assert.Equal(t, "A", s.Letter)

	// per-course points come from GPATable
	s = Compute(40, 42)
	assert.Equal(t, "A-", s.Letter)
	assert.Equal(t, 3.7, s.GradePoint)
}

func TestTablesDiverge(t *testing.T) {
	// the two legacy tables disagree and must stay distinct
	assert.Equal(t, 3.7, Point("A-", GPATable))
	assert.Equal(t, 3.75, Point("A-", CGPATable))
	assert.Equal(t, 3.3, Point("B+", GPATable))
	assert.Equal(t, 3.5, Point("B+", CGPATable))
	assert.Equal(t, 1.7, Point("C-", GPATable))
	assert.Equal(t, 1.5, Point("C-", CGPATable))
	// and agree where the legacy system agreed
	assert.Equal(t, Point("A+", GPATable), Point("A+", CGPATable))
	assert.Equal(t, Point("D", GPATable), Point("D", CGPATable))
}

func TestGPA(t *testing.T) {
	grades := []CourseGrade{
		{CreditHours: 3, Letter: "A"},
		{CreditHours: 2, Letter: "C"},
	}
	// credit-weighted: (3*4.0 + 2*2.0) / 5
	gpa := GPA(grades, CGPATable)
	assert.InDelta(t, 3.20, gpa, 1e-9)
	assert.Equal(t, "3.20", Format(gpa))

	assert.Equal(t, 0.0, GPA(nil, CGPATable))
	assert.Equal(t, "0.00", Format(GPA(nil, CGPATable)))
}
