// Package grading maps component scores to letter grades and grade points
// and aggregates credit-weighted GPA.
package grading

import "strconv"

// Letter-grade thresholds, inclusive lower bounds on the combined total,
// highest first.
var thresholds = []struct {
	min    float64
	letter string
}{
	{90, "A+"},
	{85, "A"},
	{80, "A-"},
	{75, "B+"},
	{70, "B"},
	{65, "B-"},
	{60, "C+"},
	{50, "C"},
	{45, "C-"},
	{40, "D"},
}

// GPATable is the grade-point lookup used for per-course grade reports.
//
// CGPATable is the lookup used for cumulative transcript GPA. The two tables
// disagree on A-, B+, B-, C+ and C-; both are carried over from the legacy
// system as-is and deliberately kept separate.
var (
	GPATable = map[string]float64{
		"A+": 4.0, "A": 4.0, "A-": 3.7,
		"B+": 3.3, "B": 3.0, "B-": 2.7,
		"C+": 2.3, "C": 2.0, "C-": 1.7,
		"D": 1.0, "F": 0.0,
	}
	CGPATable = map[string]float64{
		"A+": 4.0, "A": 4.0, "A-": 3.75,
		"B+": 3.5, "B": 3.0, "B-": 2.75,
		"C+": 2.5, "C": 2.0, "C-": 1.5,
		"D": 1.0, "F": 0.0,
	}
)

// Score is the derived grading of one (assignment, final) score pair.
type Score struct {
	Total      float64 `json:"total"`
	Letter     string  `json:"grade"`
	GradePoint float64 `json:"grade_point"`
}

// Letter maps a combined total to its letter grade.
func Letter(total float64) string {
	for _, t := range thresholds {
		if total >= t.min {
			return t.letter
		}
	}
	return "F"
}

// Point looks a letter grade up in the given table. Unknown letters are 0.
func Point(letter string, table map[string]float64) float64 {
	return table[letter]
}

// Compute derives the total, letter grade and per-course grade point from
// the two component scores. Totals and letters are never stored
// independently of this function.
func Compute(assignment, final float64) Score {
	total := assignment + final
	letter := Letter(total)
	return Score{
		Total:      total,
		Letter:     letter,
		GradePoint: Point(letter, GPATable),
	}
}

// CourseGrade is one credit-weighted letter grade.
type CourseGrade struct {
	CreditHours float64
	Letter      string
}

// GPA computes the credit-weighted grade-point average of the given grades
// using the given table. A zero credit-hour sum yields 0.
func GPA(grades []CourseGrade, table map[string]float64) float64 {
	var credits, points float64
	for _, g := range grades {
		credits += g.CreditHours
		points += g.CreditHours * Point(g.Letter, table)
	}
	if credits == 0 {
		return 0
	}
	return points / credits
}

// Format renders a GPA with two decimal places for display.
func Format(gpa float64) string {
	return strconv.FormatFloat(gpa, 'f', 2, 64)
}
