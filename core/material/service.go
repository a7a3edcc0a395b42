package material

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dagmawi/collegehub/core"
	"github.com/dagmawi/collegehub/core/user"
)

var (
	ErrNotFound           = core.NewNotFoundError("material not found")
	ErrSubmissionNotFound = core.NewNotFoundError("submission not found")
	ErrNotAssignment      = core.NewConflictError("material does not accept submissions")
	ErrPastDue            = core.NewConflictError("the submission deadline has passed")
)

type (
	Repository interface {
		CreateMaterial(ctx context.Context, m Material) (Material, error)
		GetMaterialByID(ctx context.Context, id string) (Material, error)
		FilterMaterials(ctx context.Context, filter QueryFilter) ([]Material, error)
		UpdateMaterial(ctx context.Context, m Material) (Material, error)
		// DeleteMaterial removes the material and all its submissions.
		DeleteMaterial(ctx context.Context, id string) error

		// UpsertSubmission keeps (material, student) unique: an existing pair
		// is replaced, never duplicated.
		UpsertSubmission(ctx context.Context, sub Submission) (Submission, error)
		GetSubmission(ctx context.Context, materialID, studentID string) (Submission, error)
		GetSubmissionByID(ctx context.Context, id string) (Submission, error)
		FilterSubmissions(ctx context.Context, materialID string) ([]Submission, error)
		UpdateSubmission(ctx context.Context, sub Submission) (Submission, error)
	}

	Service struct {
		repo     Repository
		files    core.FileStore
		logger   core.Logger
		validate *validator.Validate
	}
)

func NewService(repo Repository, files core.FileStore, logger core.Logger, validate *validator.Validate) *Service {
	return &Service{repo: repo, files: files, logger: logger, validate: validate}
}

// Publish stores a new course material; instructors only.
func (svc *Service) Publish(ctx context.Context, actor user.Principal, nm NewMaterial) (Material, error) {
	if !actor.IsInstructor() && !actor.IsAdmin() {
		return Material{}, core.NewAuthorizationError("only instructors can publish materials")
	}
	if err := nm.Validate(svc.validate); err != nil {
		return Material{}, err
	}

	now := time.Now().UTC()
	m := Material{
		ID:          uuid.New().String(),
		Title:       nm.Title,
		Description: nm.Description,
		Type:        nm.Type,
		Course:      nm.Course,
		Department:  nm.Department,
		Semester:    nm.Semester,
		Year:        nm.Year,
		FilePath:    nm.FilePath,
		VideoURL:    nm.VideoURL,
		DueDate:     nm.DueDate,
		UploadedBy:  actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateMaterial(ctx, m)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Material, error) {
	return svc.repo.FilterMaterials(ctx, filter)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Material, error) {
	return svc.repo.GetMaterialByID(ctx, id)
}

// Delete removes a material, its submissions and their stored files; the
// uploading instructor or an admin only.
func (svc *Service) Delete(ctx context.Context, actor user.Principal, id string) error {
	m, err := svc.repo.GetMaterialByID(ctx, id)
	if err != nil {
		return err
	}
	if m.UploadedBy != actor.ID && !actor.IsAdmin() {
		return core.NewAuthorizationError("not authorized to delete this material")
	}

	subs, err := svc.repo.FilterSubmissions(ctx, id)
	if err != nil {
		return err
	}
	if err := svc.repo.DeleteMaterial(ctx, id); err != nil {
		return err
	}
	// Blob cleanup is best effort; an orphaned file is harmless.
	if m.FilePath != "" {
		if err := svc.files.Delete(ctx, m.FilePath); err != nil {
			svc.logger.Warn("could not delete material file", "path", m.FilePath, "err", err)
		}
	}
	for _, sub := range subs {
		if err := svc.files.Delete(ctx, sub.FilePath); err != nil {
			svc.logger.Warn("could not delete submission file", "path", sub.FilePath, "err", err)
		}
	}
	return nil
}

// SubmitWork files a student's answer to an assignment. A resubmission
// replaces the previous one and its stored file.
func (svc *Service) SubmitWork(ctx context.Context, actor user.Principal, materialID string, ns NewSubmission) (Submission, error) {
	if !actor.IsStudent() {
		return Submission{}, core.NewAuthorizationError("only students can submit assignments")
	}
	if err := svc.validate.Struct(ns); err != nil {
		return Submission{}, err
	}
	m, err := svc.repo.GetMaterialByID(ctx, materialID)
	if err != nil {
		return Submission{}, err
	}
	if m.Type != TypeAssignment {
		return Submission{}, ErrNotAssignment
	}
	now := time.Now().UTC()
	if !m.DueDate.IsZero() && now.After(m.DueDate) {
		return Submission{}, ErrPastDue
	}

	prev, err := svc.repo.GetSubmission(ctx, materialID, actor.ID)
	hadPrev := err == nil
	if err != nil && !core.IsNotFound(err) {
		return Submission{}, err
	}

	sub := Submission{
		ID:          uuid.New().String(),
		MaterialID:  materialID,
		StudentID:   actor.ID,
		FilePath:    ns.FilePath,
		Comment:     ns.Comment,
		SubmittedAt: now,
	}
	sub, err = svc.repo.UpsertSubmission(ctx, sub)
	if err != nil {
		return Submission{}, err
	}
	if hadPrev && prev.FilePath != sub.FilePath {
		if err := svc.files.Delete(ctx, prev.FilePath); err != nil {
			svc.logger.Warn("could not delete replaced submission file", "path", prev.FilePath, "err", err)
		}
	}
	return sub, nil
}

// MySubmission returns the calling student's submission for an assignment.
func (svc *Service) MySubmission(ctx context.Context, actor user.Principal, materialID string) (Submission, error) {
	return svc.repo.GetSubmission(ctx, materialID, actor.ID)
}

// Submissions lists an assignment's submissions; the publishing instructor
// or an admin only.
func (svc *Service) Submissions(ctx context.Context, actor user.Principal, materialID string) ([]Submission, error) {
	m, err := svc.repo.GetMaterialByID(ctx, materialID)
	if err != nil {
		return nil, err
	}
	if m.UploadedBy != actor.ID && !actor.IsAdmin() {
		return nil, core.NewAuthorizationError("not authorized to view these submissions")
	}
	return svc.repo.FilterSubmissions(ctx, materialID)
}

// GradeSubmission records a mark and feedback on a submission.
func (svc *Service) GradeSubmission(ctx context.Context, actor user.Principal, materialID, submissionID string, req GradeRequest) (Submission, error) {
	if err := svc.validate.Struct(req); err != nil {
		return Submission{}, err
	}
	m, err := svc.repo.GetMaterialByID(ctx, materialID)
	if err != nil {
		return Submission{}, err
	}
	if m.UploadedBy != actor.ID && !actor.IsAdmin() {
		return Submission{}, core.NewAuthorizationError("not authorized to grade these submissions")
	}
	sub, err := svc.repo.GetSubmissionByID(ctx, submissionID)
	if err != nil {
		return Submission{}, err
	}
	if sub.MaterialID != materialID {
		return Submission{}, ErrSubmissionNotFound
	}

	sub.Mark = req.Mark
	sub.Feedback = req.Feedback
	sub.GradedBy = actor.ID
	sub.GradedAt = time.Now().UTC()
	return svc.repo.UpdateSubmission(ctx, sub)
}
