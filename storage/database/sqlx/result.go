package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/dagmawi/collegehub/core/result"
	"github.com/dagmawi/collegehub/core/workflow"
)

type resultRepository struct {
	db *sqlx.DB
}

var _ result.Repository = (*resultRepository)(nil) // interface compliance check

func NewResultRepository(db *sqlx.DB) result.Repository {
	return &resultRepository{db: db}
}

func (repo *resultRepository) CreateResult(ctx context.Context, res result.Result) (result.Result, error) {
	q := `
	INSERT INTO result (id, student_id, course_code, course_name, department, year, semester,
		credit_hour, assignment, final, total, grade, status, submitted_by, approved_by,
		approved_at, created_at, updated_at)
	VALUES (:id, :student_id, :course_code, :course_name, :department, :year, :semester,
		:credit_hour, :assignment, :final, :total, :grade, :status, :submitted_by, :approved_by,
		:approved_at, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, res); err != nil {
		return result.Result{}, errors.Wrap(err, "creating result")
	}
	return res, nil
}

func (repo *resultRepository) GetResultByID(ctx context.Context, id string) (result.Result, error) {
	var res result.Result
	q := `SELECT * FROM result WHERE id = $1`
	if err := repo.db.GetContext(ctx, &res, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return result.Result{}, result.ErrNotFound
		}
		return result.Result{}, errors.Wrap(err, "getting result")
	}
	return res, nil
}

func (repo *resultRepository) FilterResults(ctx context.Context, filter result.QueryFilter) ([]result.Result, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.StudentID != "" {
		conds = append(conds, fmt.Sprintf("student_id = %s", arg(filter.StudentID)))
	}
	if filter.CourseCode != "" {
		conds = append(conds, fmt.Sprintf("course_code = %s", arg(filter.CourseCode)))
	}
	if filter.Semester != "" {
		conds = append(conds, fmt.Sprintf("semester = %s", arg(filter.Semester)))
	}
	if filter.Year != "" {
		conds = append(conds, fmt.Sprintf("year = %s", arg(filter.Year)))
	}
	if filter.Department != "" {
		conds = append(conds, fmt.Sprintf("department = %s", arg(filter.Department)))
	}
	if filter.Status != "" {
		conds = append(conds, fmt.Sprintf("status = %s", arg(filter.Status)))
	}

	q := `SELECT * FROM result`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at"

	results := make([]result.Result, 0)
	if err := repo.db.SelectContext(ctx, &results, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering results")
	}
	return results, nil
}

func (repo *resultRepository) SetStatus(ctx context.Context, id string, expect workflow.Status, patch result.Result) error {
	q := `
	UPDATE result SET status = $3, approved_by = $4, approved_at = $5, updated_at = $6
	WHERE id = $1 AND status = $2`
	res, err := repo.db.ExecContext(ctx, q, id, string(expect),
		string(patch.Status), patch.ApprovedBy, patch.ApprovedAt, patch.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "setting result status")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err = repo.GetResultByID(ctx, id); err != nil {
			return err
		}
		return result.ErrStatusConflict
	}
	return nil
}
