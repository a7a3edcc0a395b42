package applicant

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/dagmawi/collegehub/core"
	"github.com/dagmawi/collegehub/core/user"
)

var (
	ErrNotFound    = core.NewNotFoundError("applicant not found")
	ErrRegIDExists = core.NewConflictError("an applicant with this registration ID already exists")
	ErrDecided     = core.NewConflictError("applicant has already been decided")
)

// defaultPassword is the legacy bootstrap password handed to approved
// applicants; accounts are expected to change it on first login.
const defaultPassword = "123456"

type (
	Repository interface {
		CreateApplicant(ctx context.Context, app Applicant) (Applicant, error)
		GetApplicantByID(ctx context.Context, id string) (Applicant, error)
		FilterApplicants(ctx context.Context, filter QueryFilter) ([]Applicant, error)
		// SetStatus only applies when the applicant is still Pending and
		// reports ErrDecided otherwise.
		SetStatus(ctx context.Context, id, status string) error
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

func (svc *Service) Apply(ctx context.Context, na NewApplicant) (Applicant, error) {
	if err := na.Validate(svc.validate); err != nil {
		return Applicant{}, err
	}
	now := time.Now().UTC()
	app := Applicant{
		ID:          uuid.New().String(),
		RegID:       na.RegID,
		FirstName:   na.FirstName,
		MiddleName:  na.MiddleName,
		LastName:    na.LastName,
		BirthDate:   na.BirthDate,
		Sex:         na.Sex,
		Town:        na.Town,
		Woreda:      na.Woreda,
		Address:     na.Address,
		Email:       na.Email,
		Department:  na.Department,
		Phone:       na.Phone,
		Semester:    na.Semester,
		Year:        na.Year,
		PhotoPath:   na.PhotoPath,
		Grade10Path: na.Grade10Path,
		Grade12Path: na.Grade12Path,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateApplicant(ctx, app)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Applicant, error) {
	return svc.repo.GetApplicantByID(ctx, id)
}

// Pending lists applicants awaiting a decision, optionally per department.
func (svc *Service) Pending(ctx context.Context, department string) ([]Applicant, error) {
	return svc.repo.FilterApplicants(ctx, QueryFilter{Department: department, Status: StatusPending})
}

// Approve creates a student account for the applicant, then marks the
// applicant approved. The two writes are independent; if the status write
// fails the applicant stays Pending and approval may be retried (the account
// side then reports a uniqueness conflict to reconcile by hand).
func (svc *Service) Approve(ctx context.Context, actor user.Principal, id string) (user.User, error) {
	if !actor.IsAdmin() && !actor.IsRegistrar() {
		return user.User{}, core.NewAuthorizationError("not authorized to approve applicants")
	}

	app, err := svc.repo.GetApplicantByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}
	if app.Status != StatusPending {
		return user.User{}, ErrDecided
	}

	usr, err := svc.usrSvc.CreateStudent(
		ctx, app.FirstName, app.LastName, app.Email, app.Phone, app.Department, app.RegID, defaultPassword,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "creating student account")
	}

	if err := svc.repo.SetStatus(ctx, id, StatusApproved); err != nil {
		return user.User{}, errors.Wrap(err, "marking applicant approved")
	}
	return usr, nil
}

func (svc *Service) Reject(ctx context.Context, actor user.Principal, id string) error {
	if !actor.IsAdmin() && !actor.IsRegistrar() {
		return core.NewAuthorizationError("not authorized to reject applicants")
	}
	if _, err := svc.repo.GetApplicantByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.SetStatus(ctx, id, StatusRejected)
}
