package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/dagmawi/collegehub/core/catalog"
)

type catalogRepository struct {
	db *sqlx.DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *sqlx.DB) catalog.Repository {
	return &catalogRepository{db: db}
}

func (repo *catalogRepository) CreateDepartment(ctx context.Context, dept catalog.Department) (catalog.Department, error) {
	q := `
	INSERT INTO department (id, department_id, name, faculty, created_at, updated_at)
	VALUES (:id, :department_id, :name, :faculty, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, dept); err != nil {
		return catalog.Department{}, constraintErr(errors.Wrap(err, "creating department"), map[string]error{
			"department_name_key":          catalog.ErrDeptExists,
			"department_department_id_key": catalog.ErrDeptExists,
		})
	}
	return dept, nil
}

func (repo *catalogRepository) FilterDepartments(ctx context.Context) ([]catalog.Department, error) {
	depts := make([]catalog.Department, 0)
	q := `SELECT * FROM department ORDER BY name`
	if err := repo.db.SelectContext(ctx, &depts, q); err != nil {
		return nil, errors.Wrap(err, "filtering departments")
	}
	return depts, nil
}

func (repo *catalogRepository) CreateCourse(ctx context.Context, c catalog.Course) (catalog.Course, error) {
	q := `
	INSERT INTO course (id, code, name, department, credit_hours, prerequisite, semester, year,
		created_at, updated_at)
	VALUES (:id, :code, :name, :department, :credit_hours, :prerequisite, :semester, :year,
		:created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, c); err != nil {
		return catalog.Course{}, constraintErr(errors.Wrap(err, "creating course"), map[string]error{
			"course_code_key": catalog.ErrCourseExists,
		})
	}
	return c, nil
}

func (repo *catalogRepository) FilterCourses(ctx context.Context, filter catalog.CourseFilter) ([]catalog.Course, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
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

	q := `SELECT * FROM course`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY code"

	courses := make([]catalog.Course, 0)
	if err := repo.db.SelectContext(ctx, &courses, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering courses")
	}
	return courses, nil
}

func (repo *catalogRepository) GetCourseByCode(ctx context.Context, code string) (catalog.Course, error) {
	var c catalog.Course
	q := `SELECT * FROM course WHERE lower(code) = lower($1)`
	if err := repo.db.GetContext(ctx, &c, q, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.Course{}, catalog.ErrCourseNotFound
		}
		return catalog.Course{}, errors.Wrap(err, "getting course")
	}
	return c, nil
}
