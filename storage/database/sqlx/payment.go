package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/dagmawi/collegehub/core/payment"
	"github.com/dagmawi/collegehub/core/workflow"
)

type paymentRepository struct {
	db *sqlx.DB
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *sqlx.DB) payment.Repository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) CreatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	q := `
	INSERT INTO payment (id, student_id, semester, year, amount, method, reference, receipt_path,
		status, reason, verified_by, verified_at, created_at, updated_at)
	VALUES (:id, :student_id, :semester, :year, :amount, :method, :reference, :receipt_path,
		:status, :reason, :verified_by, :verified_at, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, p); err != nil {
		return payment.Payment{}, errors.Wrap(err, "creating payment")
	}
	return p, nil
}

func (repo *paymentRepository) GetPaymentByID(ctx context.Context, id string) (payment.Payment, error) {
	var p payment.Payment
	q := `SELECT * FROM payment WHERE id = $1`
	if err := repo.db.GetContext(ctx, &p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return payment.Payment{}, payment.ErrNotFound
		}
		return payment.Payment{}, errors.Wrap(err, "getting payment")
	}
	return p, nil
}

func (repo *paymentRepository) FilterPayments(ctx context.Context, filter payment.QueryFilter) ([]payment.Payment, error) {
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
	if filter.Semester != "" {
		conds = append(conds, fmt.Sprintf("semester = %s", arg(filter.Semester)))
	}
	if filter.Year != "" {
		conds = append(conds, fmt.Sprintf("year = %s", arg(filter.Year)))
	}
	if filter.Status != "" {
		conds = append(conds, fmt.Sprintf("status = %s", arg(filter.Status)))
	}

	q := `SELECT * FROM payment`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at"

	payments := make([]payment.Payment, 0)
	if err := repo.db.SelectContext(ctx, &payments, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering payments")
	}
	return payments, nil
}

func (repo *paymentRepository) SetStatus(ctx context.Context, id string, expect workflow.Status, patch payment.Payment) error {
	q := `
	UPDATE payment SET status = $3, reason = $4, verified_by = $5, verified_at = $6, updated_at = $7
	WHERE id = $1 AND status = $2`
	res, err := repo.db.ExecContext(ctx, q, id, string(expect),
		string(patch.Status), patch.Reason, patch.VerifiedBy, patch.VerifiedAt, patch.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "setting payment status")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err = repo.GetPaymentByID(ctx, id); err != nil {
			return err
		}
		return payment.ErrStatusConflict
	}
	return nil
}
