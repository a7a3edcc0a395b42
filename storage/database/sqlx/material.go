package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/dagmawi/collegehub/core/material"
)

type materialRepository struct {
	db *sqlx.DB
}

var _ material.Repository = (*materialRepository)(nil) // interface compliance check

func NewMaterialRepository(db *sqlx.DB) material.Repository {
	return &materialRepository{db: db}
}

func (repo *materialRepository) CreateMaterial(ctx context.Context, m material.Material) (material.Material, error) {
	q := `
	INSERT INTO material (id, title, description, type, course, department, semester, year,
		file_path, video_url, due_date, uploaded_by, created_at, updated_at)
	VALUES (:id, :title, :description, :type, :course, :department, :semester, :year,
		:file_path, :video_url, :due_date, :uploaded_by, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, m); err != nil {
		return material.Material{}, errors.Wrap(err, "creating material")
	}
	return m, nil
}

func (repo *materialRepository) GetMaterialByID(ctx context.Context, id string) (material.Material, error) {
	var m material.Material
	q := `SELECT * FROM material WHERE id = $1`
	if err := repo.db.GetContext(ctx, &m, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return material.Material{}, material.ErrNotFound
		}
		return material.Material{}, errors.Wrap(err, "getting material")
	}
	return m, nil
}

func (repo *materialRepository) FilterMaterials(ctx context.Context, filter material.QueryFilter) ([]material.Material, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Course != "" {
		conds = append(conds, fmt.Sprintf("course = %s", arg(filter.Course)))
	}
	if filter.Department != "" {
		conds = append(conds, fmt.Sprintf("department = %s", arg(filter.Department)))
	}
	if filter.Semester != "" {
		conds = append(conds, fmt.Sprintf("semester = %s", arg(filter.Semester)))
	}
	if filter.Year != "" {
		conds = append(conds, fmt.Sprintf("year = %s", arg(filter.Year)))
	}
	if filter.Type != "" {
		conds = append(conds, fmt.Sprintf("type = %s", arg(filter.Type)))
	}
	if filter.UploadedBy != "" {
		conds = append(conds, fmt.Sprintf("uploaded_by = %s", arg(filter.UploadedBy)))
	}

	q := `SELECT * FROM material`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at"

	materials := make([]material.Material, 0)
	if err := repo.db.SelectContext(ctx, &materials, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering materials")
	}
	return materials, nil
}

func (repo *materialRepository) UpdateMaterial(ctx context.Context, m material.Material) (material.Material, error) {
	q := `
	UPDATE material SET title = :title, description = :description, type = :type, course = :course,
		department = :department, semester = :semester, year = :year, file_path = :file_path,
		video_url = :video_url, due_date = :due_date, updated_at = :updated_at
	WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, m)
	if err != nil {
		return material.Material{}, errors.Wrap(err, "updating material")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return material.Material{}, material.ErrNotFound
	}
	return repo.GetMaterialByID(ctx, m.ID)
}

func (repo *materialRepository) DeleteMaterial(ctx context.Context, id string) error {
	// submissions cascade
	res, err := repo.db.ExecContext(ctx, `DELETE FROM material WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting material")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return material.ErrNotFound
	}
	return nil
}

func (repo *materialRepository) UpsertSubmission(ctx context.Context, sub material.Submission) (material.Submission, error) {
	q := `
	INSERT INTO submission (id, material_id, student_id, file_path, comment, submitted_at,
		mark, feedback, graded_by, graded_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (material_id, student_id)
	DO UPDATE SET file_path = EXCLUDED.file_path, comment = EXCLUDED.comment,
		submitted_at = EXCLUDED.submitted_at
	RETURNING *`
	var saved material.Submission
	err := repo.db.GetContext(ctx, &saved, q,
		sub.ID, sub.MaterialID, sub.StudentID, sub.FilePath, sub.Comment, sub.SubmittedAt,
		sub.Mark, sub.Feedback, sub.GradedBy, sub.GradedAt)
	if err != nil {
		return material.Submission{}, errors.Wrap(err, "upserting submission")
	}
	return saved, nil
}

func (repo *materialRepository) GetSubmission(ctx context.Context, materialID, studentID string) (material.Submission, error) {
	var sub material.Submission
	q := `SELECT * FROM submission WHERE material_id = $1 AND student_id = $2`
	if err := repo.db.GetContext(ctx, &sub, q, materialID, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return material.Submission{}, material.ErrSubmissionNotFound
		}
		return material.Submission{}, errors.Wrap(err, "getting submission")
	}
	return sub, nil
}

func (repo *materialRepository) GetSubmissionByID(ctx context.Context, id string) (material.Submission, error) {
	var sub material.Submission
	q := `SELECT * FROM submission WHERE id = $1`
	if err := repo.db.GetContext(ctx, &sub, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return material.Submission{}, material.ErrSubmissionNotFound
		}
		return material.Submission{}, errors.Wrap(err, "getting submission")
	}
	return sub, nil
}

func (repo *materialRepository) FilterSubmissions(ctx context.Context, materialID string) ([]material.Submission, error) {
	subs := make([]material.Submission, 0)
	q := `SELECT * FROM submission WHERE material_id = $1 ORDER BY submitted_at`
	if err := repo.db.SelectContext(ctx, &subs, q, materialID); err != nil {
		return nil, errors.Wrap(err, "filtering submissions")
	}
	return subs, nil
}

func (repo *materialRepository) UpdateSubmission(ctx context.Context, sub material.Submission) (material.Submission, error) {
	q := `
	UPDATE submission SET file_path = :file_path, comment = :comment, submitted_at = :submitted_at,
		mark = :mark, feedback = :feedback, graded_by = :graded_by, graded_at = :graded_at
	WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, sub)
	if err != nil {
		return material.Submission{}, errors.Wrap(err, "updating submission")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return material.Submission{}, material.ErrSubmissionNotFound
	}
	return repo.GetSubmissionByID(ctx, sub.ID)
}
