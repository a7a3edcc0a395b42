package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/dagmawi/collegehub/core/applicant"
)

type applicantRepository struct {
	db *sqlx.DB
}

var _ applicant.Repository = (*applicantRepository)(nil) // interface compliance check

func NewApplicantRepository(db *sqlx.DB) applicant.Repository {
	return &applicantRepository{db: db}
}

func (repo *applicantRepository) CreateApplicant(ctx context.Context, app applicant.Applicant) (applicant.Applicant, error) {
	q := `
	INSERT INTO applicant (id, reg_id, first_name, middle_name, last_name, birth_date, sex, town,
		woreda, address, email, department, phone, semester, year, photo_path, grade10_path,
		grade12_path, status, created_at, updated_at)
	VALUES (:id, :reg_id, :first_name, :middle_name, :last_name, :birth_date, :sex, :town,
		:woreda, :address, :email, :department, :phone, :semester, :year, :photo_path, :grade10_path,
		:grade12_path, :status, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, app); err != nil {
		return applicant.Applicant{}, constraintErr(errors.Wrap(err, "creating applicant"), map[string]error{
			"applicant_reg_id_key": applicant.ErrRegIDExists,
		})
	}
	return app, nil
}

func (repo *applicantRepository) GetApplicantByID(ctx context.Context, id string) (applicant.Applicant, error) {
	var app applicant.Applicant
	q := `SELECT * FROM applicant WHERE id = $1`
	if err := repo.db.GetContext(ctx, &app, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return applicant.Applicant{}, applicant.ErrNotFound
		}
		return applicant.Applicant{}, errors.Wrap(err, "getting applicant")
	}
	return app, nil
}

func (repo *applicantRepository) FilterApplicants(ctx context.Context, filter applicant.QueryFilter) ([]applicant.Applicant, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Department != "" {
		args = append(args, filter.Department)
		conds = append(conds, fmt.Sprintf("department = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	q := `SELECT * FROM applicant`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at"

	apps := make([]applicant.Applicant, 0)
	if err := repo.db.SelectContext(ctx, &apps, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering applicants")
	}
	return apps, nil
}

func (repo *applicantRepository) SetStatus(ctx context.Context, id, status string) error {
	q := `UPDATE applicant SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`
	res, err := repo.db.ExecContext(ctx, q, id, status, time.Now().UTC(), applicant.StatusPending)
	if err != nil {
		return errors.Wrap(err, "setting applicant status")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err = repo.GetApplicantByID(ctx, id); err != nil {
			return err
		}
		return applicant.ErrDecided
	}
	return nil
}
