package registration

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dagmawi/collegehub/core"
	"github.com/dagmawi/collegehub/core/workflow"
)

// Overall registration statuses.
const (
	StatusPending  = workflow.Pending
	StatusApproved = workflow.Approved
	StatusRejected = workflow.Rejected
)

// Sign-off stages of a second-semester registration, in order.
const (
	StageDepHead = "department-head"
	StageDean    = "dean"
)

// Pipeline is the approval pipeline every non-first-semester registration
// walks through.
var Pipeline = workflow.Pipeline{Name: "registration", Stages: []string{StageDepHead, StageDean}}

// CourseLine is one registered course with its catalog fields denormalized
// at registration time.
type CourseLine struct {
	CourseCode  string  `json:"course_code" db:"course_code"`
	CourseName  string  `json:"course_name" db:"course_name"`
	CreditHours float64 `json:"credit_hours" db:"credit_hours"`
}

type Registration struct {
	ID              string            `json:"id" db:"id"`
	StudentID       string            `json:"student_id" db:"student_id"` // account id
	Semester        string            `json:"semester" db:"semester"`
	AcademicYear    string            `json:"academic_year" db:"academic_year"`
	Courses         []CourseLine      `json:"courses"`
	DepHeadApproval workflow.Decision `json:"department_head_approval"`
	DeanApproval    workflow.Decision `json:"dean_approval"`
	Status          workflow.Status   `json:"status" db:"status"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at"`
}

// StageDecision returns the recorded decision status for a pipeline stage.
func (r *Registration) StageDecision(stage string) workflow.Status {
	switch stage {
	case StageDepHead:
		return r.DepHeadApproval.Status
	case StageDean:
		return r.DeanApproval.Status
	}
	return ""
}

// NewRegistration is a student's semester registration request. Courses are
// referenced by catalog code; name and credit hours come from the catalog.
type NewRegistration struct {
	Semester     string   `json:"semester" validate:"required,oneof=1 2"`
	AcademicYear string   `json:"academic_year" validate:"required"`
	CourseCodes  []string `json:"course_codes" validate:"required,min=1,dive,required"`
}

func (nr *NewRegistration) Validate(validate *validator.Validate) error {
	nr.Semester = core.CleanString(nr.Semester)
	nr.AcademicYear = core.CleanString(nr.AcademicYear)
	for i, code := range nr.CourseCodes {
		nr.CourseCodes[i] = core.CleanString(code)
	}
	return validate.Struct(nr)
}

// StageRequest is an approver's decision on one stage.
type StageRequest struct {
	Status  string `json:"status" validate:"required,oneof=approved rejected"`
	Comment string `json:"comment"`
}
