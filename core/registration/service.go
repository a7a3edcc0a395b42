package registration

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dagmawi/collegehub/core"
	"github.com/dagmawi/collegehub/core/catalog"
	"github.com/dagmawi/collegehub/core/user"
	"github.com/dagmawi/collegehub/core/workflow"
)

var (
	ErrNotFound = core.NewNotFoundError("registration not found")
	// ErrDuplicate guards the (student, semester, academic year) unique key.
	ErrDuplicate = core.NewConflictError("student has already registered for this semester")
	// ErrStageConflict is reported by repositories when a conditional stage
	// update matches no record, i.e. another approver decided first.
	ErrStageConflict = core.NewConflictError("registration stage has already been decided")
)

type (
	Repository interface {
		CreateRegistration(ctx context.Context, reg Registration) (Registration, error)
		GetRegistrationByID(ctx context.Context, id string) (Registration, error)
		FilterByStudent(ctx context.Context, studentID string) ([]Registration, error)
		// PendingForStage lists registrations awaiting the given stage.
		PendingForStage(ctx context.Context, stage string) ([]Registration, error)
		// ApplyStageDecision records dec for stage only while that stage is
		// still pending (conditional update), together with the new overall
		// status. Reports ErrStageConflict when the condition fails.
		ApplyStageDecision(ctx context.Context, id, stage string, dec workflow.Decision, overall workflow.Status) error
	}

	Service struct {
		repo     Repository
		catSvc   *catalog.Service
		validate *validator.Validate
	}
)

func NewService(repo Repository, catSvc *catalog.Service, validate *validator.Validate) *Service {
	return &Service{repo: repo, catSvc: catSvc, validate: validate}
}

// Register files a semester registration for the calling student. Every
// course must exist in the catalog; its name and credit hours are
// denormalized onto the registration. First semester registrations are
// approved immediately; later ones start the department-head/dean pipeline.
func (svc *Service) Register(ctx context.Context, actor user.Principal, nr NewRegistration) (Registration, error) {
	if !actor.IsStudent() {
		return Registration{}, core.NewAuthorizationError("only students can register for a semester")
	}
	if err := nr.Validate(svc.validate); err != nil {
		return Registration{}, err
	}

	courses := make([]CourseLine, 0, len(nr.CourseCodes))
	for _, code := range nr.CourseCodes {
		c, err := svc.catSvc.CourseByCode(ctx, code)
		if err != nil {
			return Registration{}, err
		}
		courses = append(courses, CourseLine{
			CourseCode:  c.Code,
			CourseName:  c.Name,
			CreditHours: c.CreditHours,
		})
	}

	now := time.Now().UTC()
	reg := Registration{
		ID:              uuid.New().String(),
		StudentID:       actor.ID,
		Semester:        nr.Semester,
		AcademicYear:    nr.AcademicYear,
		Courses:         courses,
		DepHeadApproval: workflow.Decision{Status: workflow.Pending},
		DeanApproval:    workflow.Decision{Status: workflow.Pending},
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if nr.Semester == "1" {
		reg.Status = StatusApproved
	}
	return svc.repo.CreateRegistration(ctx, reg)
}

func (svc *Service) MyRegistrations(ctx context.Context, actor user.Principal) ([]Registration, error) {
	return svc.repo.FilterByStudent(ctx, actor.ID)
}

func (svc *Service) GetByID(ctx context.Context, actor user.Principal, id string) (Registration, error) {
	reg, err := svc.repo.GetRegistrationByID(ctx, id)
	if err != nil {
		return Registration{}, err
	}
	if reg.StudentID != actor.ID && !actor.IsApprover() && !actor.IsDean() && !actor.IsRegistrar() {
		return Registration{}, core.NewAuthorizationError("not authorized to view this registration")
	}
	return reg, nil
}

// PendingDepHead lists registrations awaiting department-head approval.
func (svc *Service) PendingDepHead(ctx context.Context, actor user.Principal) ([]Registration, error) {
	if !actor.IsDepHead() {
		return nil, core.NewAuthorizationError("not authorized to view pending approvals")
	}
	return svc.repo.PendingForStage(ctx, StageDepHead)
}

// PendingDean lists registrations awaiting dean approval.
func (svc *Service) PendingDean(ctx context.Context, actor user.Principal) ([]Registration, error) {
	if !actor.IsDean() {
		return nil, core.NewAuthorizationError("not authorized to view pending approvals")
	}
	return svc.repo.PendingForStage(ctx, StageDean)
}

// Decide records an approve/reject decision on the given pipeline stage.
// A rejection is terminal for the whole registration; an approval of the
// final stage approves it.
func (svc *Service) Decide(ctx context.Context, actor user.Principal, id, stage string, req StageRequest) (Registration, error) {
	switch stage {
	case StageDepHead:
		if !actor.IsDepHead() {
			return Registration{}, core.NewAuthorizationError("not authorized to decide this stage")
		}
	case StageDean:
		if !actor.IsDean() {
			return Registration{}, core.NewAuthorizationError("not authorized to decide this stage")
		}
	default:
		return Registration{}, core.NewValidationError(nil, core.FieldError{Field: "stage", Error: "unknown approval stage"})
	}
	if err := svc.validate.Struct(req); err != nil {
		return Registration{}, err
	}

	reg, err := svc.repo.GetRegistrationByID(ctx, id)
	if err != nil {
		return Registration{}, err
	}
	if reg.Semester == "1" {
		return Registration{}, core.NewConflictError("first semester registrations are approved automatically")
	}
	if err := Pipeline.Guard(stage, reg.StageDecision); err != nil {
		return Registration{}, err
	}

	dec := workflow.Decision{
		Status:  workflow.Status(req.Status),
		Actor:   actor.ID,
		Date:    time.Now().UTC(),
		Comment: req.Comment,
	}

	overall := StatusPending
	if dec.Status == workflow.Rejected {
		overall = StatusRejected
	} else if stage == Pipeline.Stages[len(Pipeline.Stages)-1] {
		overall = StatusApproved
	}

	if err := svc.repo.ApplyStageDecision(ctx, id, stage, dec, overall); err != nil {
		return Registration{}, err
	}
	return svc.repo.GetRegistrationByID(ctx, id)
}
