package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/dagmawi/collegehub/core/applicant"
)

type applicantRepository struct {
	db *applicantTable
}

var _ applicant.Repository = (*applicantRepository)(nil) // interface compliance check

func NewApplicantRepository(db *DB) applicant.Repository {
	return &applicantRepository{db: db.applicant}
}

func (repo *applicantRepository) query() []applicant.Applicant {
	apps := make([]applicant.Applicant, 0, len(repo.db.table))
	for _, a := range repo.db.table {
		apps = append(apps, *a)
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].CreatedAt.Before(apps[j].CreatedAt) })
	return apps
}

func (repo *applicantRepository) CreateApplicant(ctx context.Context, app applicant.Applicant) (applicant.Applicant, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, a := range repo.db.table {
		if a.RegID == app.RegID {
			return applicant.Applicant{}, applicant.ErrRegIDExists
		}
	}
	repo.db.table[app.ID] = &app
	return app, nil
}

func (repo *applicantRepository) GetApplicantByID(ctx context.Context, id string) (applicant.Applicant, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if app, ok := repo.db.table[id]; ok {
		return *app, nil
	}
	return applicant.Applicant{}, applicant.ErrNotFound
}

func (repo *applicantRepository) FilterApplicants(ctx context.Context, filter applicant.QueryFilter) ([]applicant.Applicant, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var apps []applicant.Applicant
	for _, app := range repo.query() {
		if filter.Department != "" && app.Department != filter.Department {
			continue
		}
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		apps = append(apps, app)
	}
	return apps, nil
}

func (repo *applicantRepository) SetStatus(ctx context.Context, id, status string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	app, ok := repo.db.table[id]
	if !ok {
		return applicant.ErrNotFound
	}
	if app.Status != applicant.StatusPending {
		return applicant.ErrDecided
	}
	app.Status = status
	app.UpdatedAt = time.Now().UTC()
	return nil
}
