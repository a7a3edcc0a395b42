package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dagmawi/collegehub/core"
	"github.com/dagmawi/collegehub/core/workflow"
)

// Session lifecycle.
const (
	StatusDraft     = workflow.Status("draft")
	StatusSubmitted = workflow.Status("submitted")
	StatusApproved  = workflow.Status("approved")
)

// Machine is the session lifecycle; there is no rejection path, an approver
// simply leaves a submitted session alone.
var Machine = workflow.Machine{
	Name:   "attendance session",
	Stages: []workflow.Status{StatusDraft, StatusSubmitted, StatusApproved},
}

// Per-student record statuses.
const (
	Present = "present"
	Absent  = "absent"
	Late    = "late"
	Excused = "excused"
)

// Session is one class meeting whose per-student records are taken together.
type Session struct {
	ID          string          `json:"id" db:"id"`
	Course      string          `json:"course" db:"course"`
	Department  string          `json:"department" db:"department"`
	Semester    string          `json:"semester" db:"semester"`
	Year        string          `json:"year" db:"year"`
	Date        time.Time       `json:"date" db:"date"`
	Instructor  string          `json:"instructor" db:"instructor"` // creating account id
	Status      workflow.Status `json:"status" db:"status"`
	SubmittedAt time.Time       `json:"submitted_at,omitempty" db:"submitted_at"`
	ApprovedBy  string          `json:"approved_by,omitempty" db:"approved_by"`
	ApprovedAt  time.Time       `json:"approved_at,omitempty" db:"approved_at"`
	Notes       string          `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// Record is one student's status in a session; unique per (session, student).
type Record struct {
	ID        string    `json:"id" db:"id"`
	SessionID string    `json:"session_id" db:"session_id"`
	StudentID string    `json:"student_id" db:"student_id"` // account id
	Status    string    `json:"status" db:"status"`
	Notes     string    `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type NewSession struct {
	Course     string    `json:"course" validate:"required"`
	Department string    `json:"department" validate:"required"`
	Semester   string    `json:"semester" validate:"required"`
	Year       string    `json:"year" validate:"required"`
	Date       time.Time `json:"date"`
	Notes      string    `json:"notes"`
}

func (ns *NewSession) Validate(validate *validator.Validate) error {
	ns.Course = core.CleanString(ns.Course)
	ns.Department = core.CleanString(ns.Department)
	return validate.Struct(ns)
}

// UpdateSession patches a draft session; empty fields keep prior values.
type UpdateSession struct {
	Course     string     `json:"course"`
	Department string     `json:"department"`
	Semester   string     `json:"semester"`
	Year       string     `json:"year"`
	Date       *time.Time `json:"date"`
	Notes      *string    `json:"notes"`
}

// RecordRequest upserts one student's record by external student ID.
type RecordRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=present absent late excused"`
	Notes     string `json:"notes"`
}

// BulkResult is the per-item outcome of a bulk record upsert.
type BulkResult struct {
	StudentID string `json:"student_id"`
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RecordID  string `json:"record_id,omitempty"`
}

type SessionFilter struct {
	Instructor string
	Course     string `query:"course"`
	Department string `query:"department"`
	Semester   string `query:"semester"`
	Year       string `query:"year"`
	Status     string `query:"status"`
	// Statuses filters on a status set when non-empty (takes precedence
	// over Status).
	Statuses []workflow.Status
}
