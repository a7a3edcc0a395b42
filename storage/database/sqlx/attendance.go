package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/dagmawi/collegehub/core/attendance"
	"github.com/dagmawi/collegehub/core/workflow"
)

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateSession(ctx context.Context, s attendance.Session) (attendance.Session, error) {
	q := `
	INSERT INTO attendance_session (id, course, department, semester, year, date, instructor,
		status, submitted_at, approved_by, approved_at, notes, created_at, updated_at)
	VALUES (:id, :course, :department, :semester, :year, :date, :instructor,
		:status, :submitted_at, :approved_by, :approved_at, :notes, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, s); err != nil {
		return attendance.Session{}, errors.Wrap(err, "creating attendance session")
	}
	return s, nil
}

func (repo *attendanceRepository) GetSessionByID(ctx context.Context, id string) (attendance.Session, error) {
	var s attendance.Session
	q := `SELECT * FROM attendance_session WHERE id = $1`
	if err := repo.db.GetContext(ctx, &s, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return attendance.Session{}, attendance.ErrSessionNotFound
		}
		return attendance.Session{}, errors.Wrap(err, "getting attendance session")
	}
	return s, nil
}

func (repo *attendanceRepository) FilterSessions(ctx context.Context, filter attendance.SessionFilter) ([]attendance.Session, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Instructor != "" {
		conds = append(conds, fmt.Sprintf("instructor = %s", arg(filter.Instructor)))
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
	if len(filter.Statuses) > 0 {
		statuses := make(pq.StringArray, 0, len(filter.Statuses))
		for _, st := range filter.Statuses {
			statuses = append(statuses, string(st))
		}
		conds = append(conds, fmt.Sprintf("status = ANY(%s)", arg(statuses)))
	} else if filter.Status != "" {
		conds = append(conds, fmt.Sprintf("status = %s", arg(filter.Status)))
	}

	q := `SELECT * FROM attendance_session`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at"

	sessions := make([]attendance.Session, 0)
	if err := repo.db.SelectContext(ctx, &sessions, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering attendance sessions")
	}
	return sessions, nil
}

func (repo *attendanceRepository) UpdateSession(ctx context.Context, s attendance.Session) (attendance.Session, error) {
	q := `
	UPDATE attendance_session SET course = :course, department = :department, semester = :semester,
		year = :year, date = :date, notes = :notes, updated_at = :updated_at
	WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, s)
	if err != nil {
		return attendance.Session{}, errors.Wrap(err, "updating attendance session")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return attendance.Session{}, attendance.ErrSessionNotFound
	}
	return repo.GetSessionByID(ctx, s.ID)
}

func (repo *attendanceRepository) DeleteSession(ctx context.Context, id string) error {
	// records cascade
	res, err := repo.db.ExecContext(ctx, `DELETE FROM attendance_session WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting attendance session")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return attendance.ErrSessionNotFound
	}
	return nil
}

func (repo *attendanceRepository) SetSessionStatus(ctx context.Context, id string, expect workflow.Status, patch attendance.Session) error {
	q := `
	UPDATE attendance_session SET status = $3, submitted_at = $4, approved_by = $5, approved_at = $6,
		updated_at = $7
	WHERE id = $1 AND status = $2`
	res, err := repo.db.ExecContext(ctx, q, id, string(expect),
		string(patch.Status), patch.SubmittedAt, patch.ApprovedBy, patch.ApprovedAt, patch.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "setting attendance session status")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err = repo.GetSessionByID(ctx, id); err != nil {
			return err
		}
		return attendance.ErrStatusConflict
	}
	return nil
}

func (repo *attendanceRepository) CountRecords(ctx context.Context, sessionID string) (int, error) {
	var n int
	q := `SELECT COUNT(*) FROM attendance_record WHERE session_id = $1`
	if err := repo.db.GetContext(ctx, &n, q, sessionID); err != nil {
		return 0, errors.Wrap(err, "counting attendance records")
	}
	return n, nil
}

func (repo *attendanceRepository) UpsertRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := `
	INSERT INTO attendance_record (id, session_id, student_id, status, notes, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (session_id, student_id)
	DO UPDATE SET status = EXCLUDED.status, notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at
	RETURNING *`
	var saved attendance.Record
	err := repo.db.GetContext(ctx, &saved, q,
		rec.ID, rec.SessionID, rec.StudentID, rec.Status, rec.Notes, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "upserting attendance record")
	}
	return saved, nil
}

func (repo *attendanceRepository) FilterRecords(ctx context.Context, sessionID string) ([]attendance.Record, error) {
	recs := make([]attendance.Record, 0)
	q := `SELECT * FROM attendance_record WHERE session_id = $1 ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &recs, q, sessionID); err != nil {
		return nil, errors.Wrap(err, "filtering attendance records")
	}
	return recs, nil
}

func (repo *attendanceRepository) RecordsForStudent(ctx context.Context, studentID string, sessionIDs []string) ([]attendance.Record, error) {
	recs := make([]attendance.Record, 0)
	q := `SELECT * FROM attendance_record WHERE student_id = $1 AND session_id = ANY($2) ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &recs, q, studentID, pq.StringArray(sessionIDs)); err != nil {
		return nil, errors.Wrap(err, "getting student attendance records")
	}
	return recs, nil
}

func (repo *attendanceRepository) GetRecordByID(ctx context.Context, id string) (attendance.Record, error) {
	var rec attendance.Record
	q := `SELECT * FROM attendance_record WHERE id = $1`
	if err := repo.db.GetContext(ctx, &rec, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, errors.Wrap(err, "getting attendance record")
	}
	return rec, nil
}

func (repo *attendanceRepository) DeleteRecord(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM attendance_record WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting attendance record")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return attendance.ErrRecordNotFound
	}
	return nil
}
