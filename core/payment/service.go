package payment

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dagmawi/collegehub/core"
	"github.com/dagmawi/collegehub/core/user"
	"github.com/dagmawi/collegehub/core/workflow"
)

var (
	ErrNotFound = core.NewNotFoundError("payment not found")
	// ErrStatusConflict is reported by repositories when a conditional
	// status update matches no record.
	ErrStatusConflict = core.NewConflictError("payment has already been decided")
)

type (
	Repository interface {
		CreatePayment(ctx context.Context, p Payment) (Payment, error)
		GetPaymentByID(ctx context.Context, id string) (Payment, error)
		FilterPayments(ctx context.Context, filter QueryFilter) ([]Payment, error)
		// SetStatus applies patch only while the payment status still equals
		// expect (conditional update); ErrStatusConflict otherwise.
		SetStatus(ctx context.Context, id string, expect workflow.Status, patch Payment) error
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

// Submit files a payment with its stored receipt and marks the student's
// account payment status pending.
func (svc *Service) Submit(ctx context.Context, actor user.Principal, np NewPayment) (Payment, error) {
	if !actor.IsStudent() {
		return Payment{}, core.NewAuthorizationError("only students can submit payments")
	}
	if err := np.Validate(svc.validate); err != nil {
		return Payment{}, err
	}

	now := time.Now().UTC()
	p := Payment{
		ID:          uuid.New().String(),
		StudentID:   actor.ID,
		Semester:    np.Semester,
		Year:        np.Year,
		Amount:      np.Amount,
		Method:      np.Method,
		Reference:   np.Reference,
		ReceiptPath: np.ReceiptPath,
		Status:      Machine.Initial(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	p, err := svc.repo.CreatePayment(ctx, p)
	if err != nil {
		return Payment{}, err
	}
	if err := svc.usrSvc.SetPaymentStatus(ctx, actor.ID, user.PaymentPending); err != nil {
		return Payment{}, err
	}
	return p, nil
}

// MyPayments lists the calling student's payment submissions.
func (svc *Service) MyPayments(ctx context.Context, actor user.Principal) ([]Payment, error) {
	return svc.repo.FilterPayments(ctx, QueryFilter{StudentID: actor.ID})
}

func (svc *Service) GetByID(ctx context.Context, actor user.Principal, id string) (Payment, error) {
	p, err := svc.repo.GetPaymentByID(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	if p.StudentID != actor.ID && !actor.IsRegistrar() && !actor.IsAdmin() {
		return Payment{}, core.NewAuthorizationError("not authorized to view this payment")
	}
	return p, nil
}

// Pending lists payments awaiting verification; registrars and admins only.
func (svc *Service) Pending(ctx context.Context, actor user.Principal, filter QueryFilter) ([]Payment, error) {
	if !actor.IsRegistrar() && !actor.IsAdmin() {
		return nil, core.NewAuthorizationError("not authorized to view pending payments")
	}
	filter.Status = string(StatusPending)
	return svc.repo.FilterPayments(ctx, filter)
}

// Verify decides a pending payment and propagates the outcome onto the
// student's account: verified unlocks the student surface, rejected drops
// them back to unpaid.
func (svc *Service) Verify(ctx context.Context, actor user.Principal, id string, req VerifyRequest) (Payment, error) {
	if !actor.IsRegistrar() && !actor.IsAdmin() {
		return Payment{}, core.NewAuthorizationError("not authorized to verify payments")
	}
	if err := svc.validate.Struct(req); err != nil {
		return Payment{}, err
	}
	next := workflow.Status(req.Status)
	if next == StatusRejected && req.Reason == "" {
		return Payment{}, core.NewValidationError(nil,
			core.FieldError{Field: "reason", Error: "a reason is required when rejecting a payment"})
	}

	p, err := svc.repo.GetPaymentByID(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	if next == StatusRejected {
		if _, err := Machine.Reject(p.Status); err != nil {
			return Payment{}, err
		}
	} else if err := Machine.Advance(p.Status, next); err != nil {
		return Payment{}, err
	}

	now := time.Now().UTC()
	patch := p
	patch.Status = next
	patch.Reason = req.Reason
	patch.VerifiedBy = actor.ID
	patch.VerifiedAt = now
	patch.UpdatedAt = now
	if err := svc.repo.SetStatus(ctx, id, StatusPending, patch); err != nil {
		return Payment{}, err
	}

	acctStatus := user.PaymentVerified
	if next == StatusRejected {
		acctStatus = user.PaymentUnpaid
	}
	if err := svc.usrSvc.SetPaymentStatus(ctx, p.StudentID, acctStatus); err != nil {
		return Payment{}, err
	}
	return svc.repo.GetPaymentByID(ctx, id)
}
