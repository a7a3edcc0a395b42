package catalog

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dagmawi/collegehub/core"
	"github.com/dagmawi/collegehub/core/user"
)

var (
	ErrCourseNotFound = core.NewNotFoundError("course not found")
	ErrCourseExists   = core.NewConflictError("a course with this code already exists")
	ErrDeptExists     = core.NewConflictError("department already exists")
)

type (
	Repository interface {
		CreateDepartment(ctx context.Context, dept Department) (Department, error)
		FilterDepartments(ctx context.Context) ([]Department, error)
		CreateCourse(ctx context.Context, c Course) (Course, error)
		FilterCourses(ctx context.Context, filter CourseFilter) ([]Course, error)
		GetCourseByCode(ctx context.Context, code string) (Course, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

// CreateDepartment records a new academic department. Admin only.
func (svc *Service) CreateDepartment(ctx context.Context, actor user.Principal, nd NewDepartment) (Department, error) {
	if !actor.IsAdmin() {
		return Department{}, core.NewAuthorizationError("not authorized to manage the catalog")
	}
	if err := nd.Validate(svc.validate); err != nil {
		return Department{}, err
	}

	now := time.Now().UTC()
	return svc.repo.CreateDepartment(ctx, Department{
		ID:           uuid.New().String(),
		DepartmentID: nd.DepartmentID,
		Name:         nd.Name,
		Faculty:      nd.Faculty,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (svc *Service) Departments(ctx context.Context) ([]Department, error) {
	return svc.repo.FilterDepartments(ctx)
}

// CreateCourse records a new catalog offering. Admin only.
func (svc *Service) CreateCourse(ctx context.Context, actor user.Principal, nc NewCourse) (Course, error) {
	if !actor.IsAdmin() {
		return Course{}, core.NewAuthorizationError("not authorized to manage the catalog")
	}
	if err := nc.Validate(svc.validate); err != nil {
		return Course{}, err
	}

	now := time.Now().UTC()
	return svc.repo.CreateCourse(ctx, Course{
		ID:           uuid.New().String(),
		Code:         nc.Code,
		Name:         nc.Name,
		Department:   nc.Department,
		CreditHours:  nc.CreditHours,
		Prerequisite: nc.Prerequisite,
		Semester:     nc.Semester,
		Year:         nc.Year,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (svc *Service) Courses(ctx context.Context, filter CourseFilter) ([]Course, error) {
	return svc.repo.FilterCourses(ctx, filter)
}

// CourseByCode resolves one offering; registration uses it to validate and
// denormalize course lines.
func (svc *Service) CourseByCode(ctx context.Context, code string) (Course, error) {
	return svc.repo.GetCourseByCode(ctx, core.CleanString(code))
}
