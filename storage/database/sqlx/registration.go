package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"

	"github.com/dagmawi/collegehub/core/registration"
	"github.com/dagmawi/collegehub/core/workflow"
)

type registrationRepository struct {
	db *sqlx.DB
}

var _ registration.Repository = (*registrationRepository)(nil) // interface compliance check

func NewRegistrationRepository(db *sqlx.DB) registration.Repository {
	return &registrationRepository{db: db}
}

// registrationRow carries the jsonb columns of a registration.
type registrationRow struct {
	ID              string         `db:"id"`
	StudentID       string         `db:"student_id"`
	Semester        string         `db:"semester"`
	AcademicYear    string         `db:"academic_year"`
	Courses         types.JSONText `db:"courses"`
	DepHeadApproval types.JSONText `db:"dep_head_approval"`
	DeanApproval    types.JSONText `db:"dean_approval"`
	Status          string         `db:"status"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func (row registrationRow) toDomain() (registration.Registration, error) {
	reg := registration.Registration{
		ID:           row.ID,
		StudentID:    row.StudentID,
		Semester:     row.Semester,
		AcademicYear: row.AcademicYear,
		Status:       workflow.Status(row.Status),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if err := json.Unmarshal(row.Courses, &reg.Courses); err != nil {
		return registration.Registration{}, errors.Wrap(err, "decoding registration courses")
	}
	if err := json.Unmarshal(row.DepHeadApproval, &reg.DepHeadApproval); err != nil {
		return registration.Registration{}, errors.Wrap(err, "decoding department head approval")
	}
	if err := json.Unmarshal(row.DeanApproval, &reg.DeanApproval); err != nil {
		return registration.Registration{}, errors.Wrap(err, "decoding dean approval")
	}
	return reg, nil
}

func toRow(reg registration.Registration) (registrationRow, error) {
	courses, err := json.Marshal(reg.Courses)
	if err != nil {
		return registrationRow{}, errors.Wrap(err, "encoding registration courses")
	}
	depHead, err := json.Marshal(reg.DepHeadApproval)
	if err != nil {
		return registrationRow{}, errors.Wrap(err, "encoding department head approval")
	}
	dean, err := json.Marshal(reg.DeanApproval)
	if err != nil {
		return registrationRow{}, errors.Wrap(err, "encoding dean approval")
	}
	return registrationRow{
		ID:              reg.ID,
		StudentID:       reg.StudentID,
		Semester:        reg.Semester,
		AcademicYear:    reg.AcademicYear,
		Courses:         courses,
		DepHeadApproval: depHead,
		DeanApproval:    dean,
		Status:          string(reg.Status),
		CreatedAt:       reg.CreatedAt,
		UpdatedAt:       reg.UpdatedAt,
	}, nil
}

func (repo *registrationRepository) CreateRegistration(ctx context.Context, reg registration.Registration) (registration.Registration, error) {
	row, err := toRow(reg)
	if err != nil {
		return registration.Registration{}, err
	}
	q := `
	INSERT INTO registration (id, student_id, semester, academic_year, courses,
		dep_head_approval, dean_approval, status, created_at, updated_at)
	VALUES (:id, :student_id, :semester, :academic_year, :courses,
		:dep_head_approval, :dean_approval, :status, :created_at, :updated_at)`
	if _, err = repo.db.NamedExecContext(ctx, q, row); err != nil {
		return registration.Registration{}, constraintErr(errors.Wrap(err, "creating registration"), map[string]error{
			"registration_student_id_semester_academic_year_key": registration.ErrDuplicate,
		})
	}
	return reg, nil
}

func (repo *registrationRepository) GetRegistrationByID(ctx context.Context, id string) (registration.Registration, error) {
	var row registrationRow
	q := `SELECT * FROM registration WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return registration.Registration{}, registration.ErrNotFound
		}
		return registration.Registration{}, errors.Wrap(err, "getting registration")
	}
	return row.toDomain()
}

func (repo *registrationRepository) selectRegs(ctx context.Context, q string, args ...interface{}) ([]registration.Registration, error) {
	var rows []registrationRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering registrations")
	}
	regs := make([]registration.Registration, 0, len(rows))
	for _, row := range rows {
		reg, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, nil
}

func (repo *registrationRepository) FilterByStudent(ctx context.Context, studentID string) ([]registration.Registration, error) {
	q := `SELECT * FROM registration WHERE student_id = $1 ORDER BY created_at`
	return repo.selectRegs(ctx, q, studentID)
}

func (repo *registrationRepository) PendingForStage(ctx context.Context, stage string) ([]registration.Registration, error) {
	var q string
	switch stage {
	case registration.StageDepHead:
		q = `
		SELECT * FROM registration
		WHERE status = 'pending' AND semester <> '1' AND dep_head_approval ->> 'status' = 'pending'
		ORDER BY created_at`
	case registration.StageDean:
		q = `
		SELECT * FROM registration
		WHERE status = 'pending' AND semester <> '1'
			AND dep_head_approval ->> 'status' = 'approved' AND dean_approval ->> 'status' = 'pending'
		ORDER BY created_at`
	default:
		return nil, registration.ErrStageConflict
	}
	return repo.selectRegs(ctx, q)
}

func (repo *registrationRepository) ApplyStageDecision(ctx context.Context, id, stage string, dec workflow.Decision, overall workflow.Status) error {
	var col string
	switch stage {
	case registration.StageDepHead:
		col = "dep_head_approval"
	case registration.StageDean:
		col = "dean_approval"
	default:
		return registration.ErrStageConflict
	}
	decJSON, err := json.Marshal(dec)
	if err != nil {
		return errors.Wrap(err, "encoding stage decision")
	}

	q := fmt.Sprintf(`
	UPDATE registration SET %[1]s = $2, status = $3, updated_at = $4
	WHERE id = $1 AND status = 'pending' AND %[1]s ->> 'status' = 'pending'`, col)
	res, err := repo.db.ExecContext(ctx, q, id, types.JSONText(decJSON), string(overall), time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "applying stage decision")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err = repo.GetRegistrationByID(ctx, id); err != nil {
			return err
		}
		return registration.ErrStageConflict
	}
	return nil
}
