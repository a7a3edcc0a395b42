package attendance

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/dagmawi/collegehub/core"
	"github.com/dagmawi/collegehub/core/user"
	"github.com/dagmawi/collegehub/core/workflow"
)

var (
	ErrSessionNotFound = core.NewNotFoundError("attendance session not found")
	ErrRecordNotFound  = core.NewNotFoundError("attendance record not found")
	ErrNoRecords       = core.NewValidationError(errors.New("cannot submit attendance with no records"))
	// ErrStatusConflict is reported by repositories when a conditional
	// status update matches no record.
	ErrStatusConflict = core.NewConflictError("attendance session status has changed")
)

type (
	Repository interface {
		CreateSession(ctx context.Context, s Session) (Session, error)
		GetSessionByID(ctx context.Context, id string) (Session, error)
		FilterSessions(ctx context.Context, filter SessionFilter) ([]Session, error)
		UpdateSession(ctx context.Context, s Session) (Session, error)
		// DeleteSession removes the session and all its records.
		DeleteSession(ctx context.Context, id string) error
		// SetSessionStatus applies patch only while the session status still
		// equals expect (conditional update); ErrStatusConflict otherwise.
		SetSessionStatus(ctx context.Context, id string, expect workflow.Status, patch Session) error

		CountRecords(ctx context.Context, sessionID string) (int, error)
		// UpsertRecord keeps (session, student) unique: an existing pair is
		// updated in place, never duplicated.
		UpsertRecord(ctx context.Context, rec Record) (Record, error)
		FilterRecords(ctx context.Context, sessionID string) ([]Record, error)
		// RecordsForStudent returns the student's records across the given
		// sessions.
		RecordsForStudent(ctx context.Context, studentID string, sessionIDs []string) ([]Record, error)
		GetRecordByID(ctx context.Context, id string) (Record, error)
		DeleteRecord(ctx context.Context, id string) error
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

func (svc *Service) CreateSession(ctx context.Context, actor user.Principal, ns NewSession) (Session, error) {
	if !actor.IsInstructor() {
		return Session{}, core.NewAuthorizationError("only instructors can take attendance")
	}
	if err := ns.Validate(svc.validate); err != nil {
		return Session{}, err
	}
	now := time.Now().UTC()
	date := ns.Date
	if date.IsZero() {
		date = now
	}
	s := Session{
		ID:         uuid.New().String(),
		Course:     ns.Course,
		Department: ns.Department,
		Semester:   ns.Semester,
		Year:       ns.Year,
		Date:       date,
		Instructor: actor.ID,
		Status:     Machine.Initial(),
		Notes:      ns.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateSession(ctx, s)
}

// MySessions lists the calling instructor's sessions.
func (svc *Service) MySessions(ctx context.Context, actor user.Principal, filter SessionFilter) ([]Session, error) {
	filter.Instructor = actor.ID
	return svc.repo.FilterSessions(ctx, filter)
}

func (svc *Service) GetSession(ctx context.Context, actor user.Principal, id string) (Session, error) {
	s, err := svc.repo.GetSessionByID(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if s.Instructor != actor.ID && !actor.IsApprover() {
		return Session{}, core.NewAuthorizationError("not authorized to view this attendance session")
	}
	return s, nil
}

// draftOwnedBy loads a session and enforces the only-creator-while-draft
// mutation guard.
func (svc *Service) draftOwnedBy(ctx context.Context, actor user.Principal, id string) (Session, error) {
	s, err := svc.repo.GetSessionByID(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if s.Instructor != actor.ID {
		return Session{}, core.NewAuthorizationError("not authorized to modify this attendance session")
	}
	if s.Status != StatusDraft {
		return Session{}, core.NewConflictError("cannot modify attendance that has been submitted")
	}
	return s, nil
}

func (svc *Service) UpdateSession(ctx context.Context, actor user.Principal, id string, up UpdateSession) (Session, error) {
	s, err := svc.draftOwnedBy(ctx, actor, id)
	if err != nil {
		return Session{}, err
	}
	if up.Course != "" {
		s.Course = core.CleanString(up.Course)
	}
	if up.Department != "" {
		s.Department = core.CleanString(up.Department)
	}
	if up.Semester != "" {
		s.Semester = up.Semester
	}
	if up.Year != "" {
		s.Year = up.Year
	}
	if up.Date != nil {
		s.Date = *up.Date
	}
	if up.Notes != nil {
		s.Notes = *up.Notes
	}
	s.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSession(ctx, s)
}

func (svc *Service) DeleteSession(ctx context.Context, actor user.Principal, id string) error {
	if _, err := svc.draftOwnedBy(ctx, actor, id); err != nil {
		return err
	}
	return svc.repo.DeleteSession(ctx, id)
}

// Submit hands a draft session with at least one record over for approval.
func (svc *Service) Submit(ctx context.Context, actor user.Principal, id string) (Session, error) {
	s, err := svc.repo.GetSessionByID(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if s.Instructor != actor.ID {
		return Session{}, core.NewAuthorizationError("not authorized to submit this attendance session")
	}
	if err := Machine.Advance(s.Status, StatusSubmitted); err != nil {
		return Session{}, err
	}
	n, err := svc.repo.CountRecords(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if n == 0 {
		return Session{}, ErrNoRecords
	}

	now := time.Now().UTC()
	patch := s
	patch.Status = StatusSubmitted
	patch.SubmittedAt = now
	patch.UpdatedAt = now
	if err := svc.repo.SetSessionStatus(ctx, id, StatusDraft, patch); err != nil {
		return Session{}, err
	}
	return svc.repo.GetSessionByID(ctx, id)
}

// Approve advances a submitted session; approver roles only.
func (svc *Service) Approve(ctx context.Context, actor user.Principal, id string) (Session, error) {
	if !actor.IsApprover() {
		return Session{}, core.NewAuthorizationError("not authorized to approve attendance")
	}
	s, err := svc.repo.GetSessionByID(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if err := Machine.Advance(s.Status, StatusApproved); err != nil {
		return Session{}, err
	}

	now := time.Now().UTC()
	patch := s
	patch.Status = StatusApproved
	patch.ApprovedBy = actor.ID
	patch.ApprovedAt = now
	patch.UpdatedAt = now
	if err := svc.repo.SetSessionStatus(ctx, id, StatusSubmitted, patch); err != nil {
		return Session{}, err
	}
	return svc.repo.GetSessionByID(ctx, id)
}

// UpsertRecord adds or replaces one student's record in a draft session.
func (svc *Service) UpsertRecord(ctx context.Context, actor user.Principal, sessionID string, rr RecordRequest) (Record, error) {
	if err := svc.validate.Struct(rr); err != nil {
		return Record{}, err
	}
	s, err := svc.draftOwnedBy(ctx, actor, sessionID)
	if err != nil {
		return Record{}, err
	}
	student, err := svc.usrSvc.GetStudentByUserID(ctx, rr.StudentID)
	if err != nil {
		return Record{}, err
	}

	now := time.Now().UTC()
	rec := Record{
		ID:        uuid.New().String(),
		SessionID: s.ID,
		StudentID: student.ID,
		Status:    rr.Status,
		Notes:     rr.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.UpsertRecord(ctx, rec)
}

// BulkUpsertRecords processes each record independently and reports per-item
// outcomes; a bad item never fails the batch.
func (svc *Service) BulkUpsertRecords(ctx context.Context, actor user.Principal, sessionID string, reqs []RecordRequest) ([]BulkResult, error) {
	if len(reqs) == 0 {
		return nil, core.NewValidationError(errors.New("records array is required"),
			core.FieldError{Field: "records", Error: "at least one record is required"})
	}
	if _, err := svc.draftOwnedBy(ctx, actor, sessionID); err != nil {
		return nil, err
	}

	results := make([]BulkResult, 0, len(reqs))
	for _, rr := range reqs {
		rec, err := svc.UpsertRecord(ctx, actor, sessionID, rr)
		if err != nil {
			results = append(results, BulkResult{StudentID: rr.StudentID, Success: false, Message: err.Error()})
			continue
		}
		results = append(results, BulkResult{
			StudentID: rr.StudentID,
			Success:   true,
			Message:   "record updated successfully",
			RecordID:  rec.ID,
		})
	}
	return results, nil
}

func (svc *Service) Records(ctx context.Context, actor user.Principal, sessionID string) ([]Record, error) {
	if _, err := svc.GetSession(ctx, actor, sessionID); err != nil {
		return nil, err
	}
	return svc.repo.FilterRecords(ctx, sessionID)
}

func (svc *Service) DeleteRecord(ctx context.Context, actor user.Principal, sessionID, recordID string) error {
	if _, err := svc.draftOwnedBy(ctx, actor, sessionID); err != nil {
		return err
	}
	rec, err := svc.repo.GetRecordByID(ctx, recordID)
	if err != nil {
		return err
	}
	if rec.SessionID != sessionID {
		return ErrRecordNotFound
	}
	return svc.repo.DeleteRecord(ctx, recordID)
}
