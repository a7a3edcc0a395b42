package result

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dagmawi/collegehub/core"
	"github.com/dagmawi/collegehub/core/workflow"
)

// Result statuses; capitalized for data compatibility with the legacy
// system. There is no rejection path.
const (
	StatusPending  = workflow.Status("Pending")
	StatusApproved = workflow.Status("Approved")
)

var Machine = workflow.Machine{
	Name:   "result",
	Stages: []workflow.Status{StatusPending, StatusApproved},
}

// Result is one student's grade in one course and term. Total and grade are
// always derived from the component scores, never set directly.
type Result struct {
	ID          string          `json:"id" db:"id"`
	StudentID   string          `json:"student_id" db:"student_id"` // external student ID
	CourseCode  string          `json:"course_code" db:"course_code"`
	CourseName  string          `json:"course_name" db:"course_name"`
	Department  string          `json:"department,omitempty" db:"department"`
	Year        string          `json:"year" db:"year"`
	Semester    string          `json:"semester" db:"semester"`
	CreditHour  float64         `json:"credit_hour" db:"credit_hour"`
	Assignment  float64         `json:"assignment" db:"assignment"`
	Final       float64         `json:"final" db:"final"`
	Total       float64         `json:"total" db:"total"`
	Grade       string          `json:"grade" db:"grade"`
	Status      workflow.Status `json:"status" db:"status"`
	SubmittedBy string          `json:"submitted_by,omitempty" db:"submitted_by"`
	ApprovedBy  string          `json:"approved_by,omitempty" db:"approved_by"`
	ApprovedAt  time.Time       `json:"approved_at,omitempty" db:"approved_at"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// NewResult is an instructor's grade submission for a student.
type NewResult struct {
	StudentID  string  `json:"student_id" validate:"required"`
	CourseCode string  `json:"course_code" validate:"required"`
	CourseName string  `json:"course_name" validate:"required"`
	Department string  `json:"department"`
	Year       string  `json:"year" validate:"required"`
	Semester   string  `json:"semester" validate:"required,oneof=1 2"`
	CreditHour float64 `json:"credit_hour" validate:"required,gt=0"`
	Assignment float64 `json:"assignment" validate:"min=0,max=50"`
	Final      float64 `json:"final" validate:"min=0,max=50"`
}

func (nr *NewResult) Validate(validate *validator.Validate) error {
	nr.StudentID = core.CleanString(nr.StudentID)
	nr.CourseCode = core.CleanString(nr.CourseCode)
	return validate.Struct(nr)
}

type QueryFilter struct {
	StudentID  string `query:"student_id"`
	CourseCode string `query:"course_code"`
	Semester   string `query:"semester"`
	Year       string `query:"year"`
	Department string `query:"department"`
	Status     string `query:"status"`
}
