package report

// StudentInfo is the identity block on top of every report. Missing fields
// are filled with placeholders rather than left empty.
type StudentInfo struct {
	UserID     string `json:"user_id"`
	FullName   string `json:"full_name"`
	Department string `json:"department"`
	Email      string `json:"email"`
}

// TermGrades is one academic term's approved results with its GPA.
type TermGrades struct {
	Year        string      `json:"year"`
	Semester    string      `json:"semester"`
	Courses     []CourseRow `json:"courses"`
	TotalCredit float64     `json:"total_credit"`
	GPA         string      `json:"gpa"`
}

// CourseRow is one course line on a transcript or results report.
type CourseRow struct {
	CourseCode string  `json:"course_code"`
	CourseName string  `json:"course_name"`
	CreditHour float64 `json:"credit_hour"`
	Total      float64 `json:"total"`
	Grade      string  `json:"grade"`
	GradePoint float64 `json:"grade_point"`
}

// Transcript is the full academic record: every approved term plus the
// cumulative GPA on the transcript scale.
type Transcript struct {
	Student     StudentInfo  `json:"student"`
	Terms       []TermGrades `json:"terms"`
	TotalCredit float64      `json:"total_credit"`
	CGPA        string       `json:"cgpa"`
}

// StudentResults is the flat approved-results report for one term or all.
type StudentResults struct {
	Student  StudentInfo `json:"student"`
	Semester string      `json:"semester,omitempty"`
	Year     string      `json:"year,omitempty"`
	Courses  []CourseRow `json:"courses"`
}

// CourseAttendance is one course's attendance summary for a student.
type CourseAttendance struct {
	Course   string  `json:"course"`
	Sessions int     `json:"sessions"`
	Present  int     `json:"present"`
	Absent   int     `json:"absent"`
	Late     int     `json:"late"`
	Excused  int     `json:"excused"`
	Rate     float64 `json:"rate"`
}

// AttendanceStats is a student's attendance report across approved sessions.
// Rate counts present and late as attended.
type AttendanceStats struct {
	Student       StudentInfo        `json:"student"`
	TotalSessions int                `json:"total_sessions"`
	Attended      int                `json:"attended"`
	Rate          float64            `json:"rate"`
	Courses       []CourseAttendance `json:"courses"`
}
