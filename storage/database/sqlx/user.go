// Package sqlxrepos implements the core repositories on PostgreSQL via sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/dagmawi/collegehub/core"
	"github.com/dagmawi/collegehub/core/user"
)

const pqUniqueViolation = "23505"

// constraintErr maps a unique violation on the given constraint to a domain
// error, or returns err untouched.
func constraintErr(err error, constraints map[string]error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		if domErr, ok := constraints[pqErr.Constraint]; ok {
			return domErr
		}
	}
	return err
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUniqueness(ctx context.Context, username, userID string, excludedUsers ...user.User) error {
	excluded := make(pq.StringArray, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		excluded = append(excluded, usr.ID)
	}

	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM app_user WHERE username = $1 AND id <> ALL($2::uuid[]))`
	if err := repo.db.GetContext(ctx, &exists, q, username, excluded); err != nil {
		return errors.Wrap(err, "checking username uniqueness")
	}
	if exists {
		return user.ErrUsernameExists
	}

	if userID != "" {
		q = `SELECT EXISTS (SELECT 1 FROM app_user WHERE user_id = $1 AND id <> ALL($2::uuid[]))`
		if err := repo.db.GetContext(ctx, &exists, q, userID, excluded); err != nil {
			return errors.Wrap(err, "checking user ID uniqueness")
		}
		if exists {
			return user.ErrUserIDExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `
	INSERT INTO app_user (id, user_id, first_name, last_name, username, email, phone, role,
		department, is_active, payment_status, password_hash, last_login, created_at, updated_at)
	VALUES (:id, :user_id, :first_name, :last_name, :username, :email, :phone, :role,
		:department, :is_active, :payment_status, :password_hash, :last_login, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, usr); err != nil {
		return user.User{}, constraintErr(errors.Wrap(err, "creating user"), map[string]error{
			"app_user_username_key": user.ErrUsernameExists,
			"app_user_user_id_uniq": user.ErrUserIDExists,
		})
	}
	return usr, nil
}

func (repo *userRepository) getUserBy(ctx context.Context, col string, val interface{}) (user.User, error) {
	var usr user.User
	q := fmt.Sprintf(`SELECT * FROM app_user WHERE %s = $1`, col)
	if err := repo.db.GetContext(ctx, &usr, q, val); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getUserBy(ctx, "id", id)
}

func (repo *userRepository) GetUserByUserID(ctx context.Context, userID string) (user.User, error) {
	return repo.getUserBy(ctx, "user_id", userID)
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return repo.getUserBy(ctx, "username", username)
}

// orderable columns; anything else in a DBOrdering is ignored.
var userOrderCols = map[string]bool{"created_at": true, "username": true, "user_id": true}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter, ord ...core.DBOrdering) ([]user.User, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		n := arg("%" + filter.Search + "%")
		conds = append(conds, fmt.Sprintf(
			"(first_name ILIKE %[1]s OR last_name ILIKE %[1]s OR username ILIKE %[1]s OR user_id ILIKE %[1]s)", n))
	}
	if len(filter.Roles) > 0 {
		conds = append(conds, fmt.Sprintf("role = ANY(%s)", arg(pq.StringArray(filter.Roles))))
	}
	if filter.IsActive != nil {
		conds = append(conds, fmt.Sprintf("is_active = %s", arg(*filter.IsActive)))
	}
	if !filter.CreatedFrom.IsZero() {
		conds = append(conds, fmt.Sprintf("created_at >= %s", arg(filter.CreatedFrom.UTC())))
	}
	if !filter.CreatedTo.IsZero() {
		conds = append(conds, fmt.Sprintf("created_at <= %s", arg(filter.CreatedTo.UTC())))
	}

	q := `SELECT * FROM app_user`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	var orderings []string
	for _, o := range ord {
		if userOrderCols[o.Field] {
			orderings = append(orderings, o.String())
		}
	}
	if len(orderings) == 0 {
		orderings = []string{"created_at"}
	}
	q += " ORDER BY " + strings.Join(orderings, ", ")

	users := make([]user.User, 0)
	if err := repo.db.SelectContext(ctx, &users, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	var hash interface{}
	if usr.PasswordHash != nil {
		hash = usr.PasswordHash
	}
	q := `
	UPDATE app_user SET
		first_name = COALESCE(NULLIF($2, ''), first_name),
		last_name = COALESCE(NULLIF($3, ''), last_name),
		username = COALESCE(NULLIF($4, ''), username),
		email = COALESCE(NULLIF($5, ''), email),
		phone = COALESCE(NULLIF($6, ''), phone),
		role = COALESCE(NULLIF($7, ''), role),
		department = COALESCE(NULLIF($8, ''), department),
		password_hash = COALESCE($9, password_hash),
		is_active = COALESCE($10, is_active),
		updated_at = $11
	WHERE id = $1
	RETURNING *`

	var updated user.User
	err := repo.db.GetContext(ctx, &updated, q,
		usr.ID, usr.FirstName, usr.LastName, usr.Username, usr.Email, usr.Phone, usr.Role,
		usr.Department, hash, isActive, usr.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, constraintErr(errors.Wrap(err, "updating user"), map[string]error{
			"app_user_username_key": user.ErrUsernameExists,
		})
	}
	return updated, nil
}

func (repo *userRepository) SetPaymentStatus(ctx context.Context, id, status string) error {
	q := `UPDATE app_user SET payment_status = $2, updated_at = $3 WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, id, status, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "setting payment status")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo *userRepository) SetLastLogin(ctx context.Context, id string, t time.Time) error {
	q := `UPDATE app_user SET last_login = $2 WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, id, t)
	if err != nil {
		return errors.Wrap(err, "setting last login")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	q := `DELETE FROM app_user WHERE id = ANY($1::uuid[])`
	if _, err := repo.db.ExecContext(ctx, q, pq.StringArray(ids)); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
