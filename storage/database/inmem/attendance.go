package inmemdb

import (
	"context"
	"sort"

	"github.com/dagmawi/collegehub/core/attendance"
	"github.com/dagmawi/collegehub/core/workflow"
)

type attendanceRepository struct {
	db *attendanceTables
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db.attendance}
}

func (repo *attendanceRepository) querySessions() []attendance.Session {
	sessions := make([]attendance.Session, 0, len(repo.db.sessions))
	for _, s := range repo.db.sessions {
		sessions = append(sessions, *s)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].CreatedAt.Before(sessions[j].CreatedAt) })
	return sessions
}

func (repo *attendanceRepository) CreateSession(ctx context.Context, s attendance.Session) (attendance.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.sessions[s.ID] = &s
	return s, nil
}

func (repo *attendanceRepository) GetSessionByID(ctx context.Context, id string) (attendance.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.sessions[id]; ok {
		return *s, nil
	}
	return attendance.Session{}, attendance.ErrSessionNotFound
}

func matchesSession(s attendance.Session, filter attendance.SessionFilter) bool {
	if filter.Instructor != "" && s.Instructor != filter.Instructor {
		return false
	}
	if filter.Course != "" && s.Course != filter.Course {
		return false
	}
	if filter.Department != "" && s.Department != filter.Department {
		return false
	}
	if filter.Semester != "" && s.Semester != filter.Semester {
		return false
	}
	if filter.Year != "" && s.Year != filter.Year {
		return false
	}
	if len(filter.Statuses) > 0 {
		for _, st := range filter.Statuses {
			if s.Status == st {
				return true
			}
		}
		return false
	}
	if filter.Status != "" && s.Status != workflow.Status(filter.Status) {
		return false
	}
	return true
}

func (repo *attendanceRepository) FilterSessions(ctx context.Context, filter attendance.SessionFilter) ([]attendance.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var sessions []attendance.Session
	for _, s := range repo.querySessions() {
		if matchesSession(s, filter) {
			sessions = append(sessions, s)
		}
	}
	return sessions, nil
}

func (repo *attendanceRepository) UpdateSession(ctx context.Context, s attendance.Session) (attendance.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.sessions[s.ID]; !ok {
		return attendance.Session{}, attendance.ErrSessionNotFound
	}
	repo.db.sessions[s.ID] = &s
	return s, nil
}

func (repo *attendanceRepository) DeleteSession(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.sessions[id]; !ok {
		return attendance.ErrSessionNotFound
	}
	delete(repo.db.sessions, id)
	for recID, rec := range repo.db.records {
		if rec.SessionID == id {
			delete(repo.db.records, recID)
		}
	}
	return nil
}

func (repo *attendanceRepository) SetSessionStatus(ctx context.Context, id string, expect workflow.Status, patch attendance.Session) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	s, ok := repo.db.sessions[id]
	if !ok {
		return attendance.ErrSessionNotFound
	}
	if s.Status != expect {
		return attendance.ErrStatusConflict
	}
	patch.ID = id
	repo.db.sessions[id] = &patch
	return nil
}

func (repo *attendanceRepository) CountRecords(ctx context.Context, sessionID string) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var n int
	for _, rec := range repo.db.records {
		if rec.SessionID == sessionID {
			n++
		}
	}
	return n, nil
}

func (repo *attendanceRepository) UpsertRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.records {
		if existing.SessionID == rec.SessionID && existing.StudentID == rec.StudentID {
			existing.Status = rec.Status
			existing.Notes = rec.Notes
			existing.UpdatedAt = rec.UpdatedAt
			return *existing, nil
		}
	}
	repo.db.records[rec.ID] = &rec
	return rec, nil
}

func (repo *attendanceRepository) FilterRecords(ctx context.Context, sessionID string) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var recs []attendance.Record
	for _, rec := range repo.db.records {
		if rec.SessionID == sessionID {
			recs = append(recs, *rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].CreatedAt.Before(recs[j].CreatedAt) })
	return recs, nil
}

func (repo *attendanceRepository) RecordsForStudent(ctx context.Context, studentID string, sessionIDs []string) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	ids := make(map[string]struct{}, len(sessionIDs))
	for _, id := range sessionIDs {
		ids[id] = struct{}{}
	}
	var recs []attendance.Record
	for _, rec := range repo.db.records {
		if rec.StudentID != studentID {
			continue
		}
		if _, ok := ids[rec.SessionID]; ok {
			recs = append(recs, *rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].CreatedAt.Before(recs[j].CreatedAt) })
	return recs, nil
}

func (repo *attendanceRepository) GetRecordByID(ctx context.Context, id string) (attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.records[id]; ok {
		return *rec, nil
	}
	return attendance.Record{}, attendance.ErrRecordNotFound
}

func (repo *attendanceRepository) DeleteRecord(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.records[id]; !ok {
		return attendance.ErrRecordNotFound
	}
	delete(repo.db.records, id)
	return nil
}
