package result

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dagmawi/collegehub/core"
	"github.com/dagmawi/collegehub/core/grading"
	"github.com/dagmawi/collegehub/core/user"
	"github.com/dagmawi/collegehub/core/workflow"
)

var (
	ErrNotFound = core.NewNotFoundError("result not found")
	// ErrStatusConflict is reported by repositories when a conditional
	// status update matches no record.
	ErrStatusConflict = core.NewConflictError("result has already been approved")
)

type (
	Repository interface {
		CreateResult(ctx context.Context, res Result) (Result, error)
		GetResultByID(ctx context.Context, id string) (Result, error)
		FilterResults(ctx context.Context, filter QueryFilter) ([]Result, error)
		// SetStatus applies patch only while the result status still equals
		// expect (conditional update); ErrStatusConflict otherwise.
		SetStatus(ctx context.Context, id string, expect workflow.Status, patch Result) error
	}

	Service struct {
		repo     Repository
		usrSvc   *user.Service
		validate *validator.Validate
	}
)

func NewService(repo Repository, usrSvc *user.Service, validate *validator.Validate) *Service {
	return &Service{repo: repo, usrSvc: usrSvc, validate: validate}
}

// Submit files an instructor's grade for a student. The total and letter
// grade are derived here from the component scores; client-supplied values
// are never trusted.
func (svc *Service) Submit(ctx context.Context, actor user.Principal, nr NewResult) (Result, error) {
	if !actor.IsInstructor() && !actor.IsAdmin() {
		return Result{}, core.NewAuthorizationError("only instructors can submit grades")
	}
	if err := nr.Validate(svc.validate); err != nil {
		return Result{}, err
	}
	if _, err := svc.usrSvc.GetStudentByUserID(ctx, nr.StudentID); err != nil {
		return Result{}, err
	}

	score := grading.Compute(nr.Assignment, nr.Final)
	now := time.Now().UTC()
	res := Result{
		ID:          uuid.New().String(),
		StudentID:   nr.StudentID,
		CourseCode:  nr.CourseCode,
		CourseName:  nr.CourseName,
		Department:  nr.Department,
		Year:        nr.Year,
		Semester:    nr.Semester,
		CreditHour:  nr.CreditHour,
		Assignment:  nr.Assignment,
		Final:       nr.Final,
		Total:       score.Total,
		Grade:       score.Letter,
		Status:      Machine.Initial(),
		SubmittedBy: actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateResult(ctx, res)
}

// Approve finalizes a pending result. There is no rejection path; a wrong
// grade is corrected by resubmitting before approval.
func (svc *Service) Approve(ctx context.Context, actor user.Principal, id string) (Result, error) {
	if !actor.IsApprover() {
		return Result{}, core.NewAuthorizationError("not authorized to approve grades")
	}
	res, err := svc.repo.GetResultByID(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if err := Machine.Advance(res.Status, StatusApproved); err != nil {
		return Result{}, err
	}

	now := time.Now().UTC()
	patch := res
	patch.Status = StatusApproved
	patch.ApprovedBy = actor.ID
	patch.ApprovedAt = now
	patch.UpdatedAt = now
	if err := svc.repo.SetStatus(ctx, id, StatusPending, patch); err != nil {
		return Result{}, err
	}
	return svc.repo.GetResultByID(ctx, id)
}

// Filter lists results for staff; students only ever see their own approved
// grades through StudentGrades.
func (svc *Service) Filter(ctx context.Context, actor user.Principal, filter QueryFilter) ([]Result, error) {
	if actor.IsStudent() {
		return nil, core.NewAuthorizationError("not authorized to browse results")
	}
	return svc.repo.FilterResults(ctx, filter)
}

// StudentGrades returns a student's approved results, optionally narrowed by
// semester and year. A student may only query their own grades.
func (svc *Service) StudentGrades(ctx context.Context, actor user.Principal, studentID string, filter QueryFilter) ([]Result, error) {
	if actor.IsStudent() && actor.UserID != studentID {
		return nil, core.NewAuthorizationError("not authorized to view these grades")
	}
	filter.StudentID = studentID
	filter.Status = string(StatusApproved)
	return svc.repo.FilterResults(ctx, filter)
}

// GradeRow is one course line of a grade report.
type GradeRow struct {
	CourseCode string  `json:"course_code"`
	CourseName string  `json:"course_name"`
	CreditHour float64 `json:"credit_hour"`
	Assignment float64 `json:"assignment"`
	Final      float64 `json:"final"`
	Total      float64 `json:"total"`
	Grade      string  `json:"grade"`
	GradePoint float64 `json:"grade_point"`
}

// GradeReport is a student's per-term grade summary with a semester GPA.
type GradeReport struct {
	StudentID   string     `json:"student_id"`
	Semester    string     `json:"semester,omitempty"`
	Year        string     `json:"year,omitempty"`
	Courses     []GradeRow `json:"courses"`
	TotalCredit float64    `json:"total_credit"`
	GPA         string     `json:"gpa"`
}

// Report assembles the approved-grades report for a student using the
// semester GPA scale.
func (svc *Service) Report(ctx context.Context, actor user.Principal, studentID string, filter QueryFilter) (GradeReport, error) {
	results, err := svc.StudentGrades(ctx, actor, studentID, filter)
	if err != nil {
		return GradeReport{}, err
	}

	rep := GradeReport{
		StudentID: studentID,
		Semester:  filter.Semester,
		Year:      filter.Year,
		Courses:   make([]GradeRow, 0, len(results)),
	}
	grades := make([]grading.CourseGrade, 0, len(results))
	for _, res := range results {
		rep.Courses = append(rep.Courses, GradeRow{
			CourseCode: res.CourseCode,
			CourseName: res.CourseName,
			CreditHour: res.CreditHour,
			Assignment: res.Assignment,
			Final:      res.Final,
			Total:      res.Total,
			Grade:      res.Grade,
			GradePoint: grading.Point(res.Grade, grading.GPATable),
		})
		rep.TotalCredit += res.CreditHour
		grades = append(grades, grading.CourseGrade{CreditHours: res.CreditHour, Letter: res.Grade})
	}
	rep.GPA = grading.Format(grading.GPA(grades, grading.GPATable))
	return rep, nil
}
