package inmemdb

import (
	"context"
	"sort"

	"github.com/dagmawi/collegehub/core/result"
	"github.com/dagmawi/collegehub/core/workflow"
)

type resultRepository struct {
	db *resultTable
}

var _ result.Repository = (*resultRepository)(nil) // interface compliance check

func NewResultRepository(db *DB) result.Repository {
	return &resultRepository{db: db.result}
}

func (repo *resultRepository) query() []result.Result {
	results := make([]result.Result, 0, len(repo.db.table))
	for _, r := range repo.db.table {
		results = append(results, *r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].CreatedAt.Before(results[j].CreatedAt) })
	return results
}

func (repo *resultRepository) CreateResult(ctx context.Context, res result.Result) (result.Result, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.table[res.ID] = &res
	return res, nil
}

func (repo *resultRepository) GetResultByID(ctx context.Context, id string) (result.Result, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if res, ok := repo.db.table[id]; ok {
		return *res, nil
	}
	return result.Result{}, result.ErrNotFound
}

func (repo *resultRepository) FilterResults(ctx context.Context, filter result.QueryFilter) ([]result.Result, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var results []result.Result
	for _, res := range repo.query() {
		if filter.StudentID != "" && res.StudentID != filter.StudentID {
			continue
		}
		if filter.CourseCode != "" && res.CourseCode != filter.CourseCode {
			continue
		}
		if filter.Semester != "" && res.Semester != filter.Semester {
			continue
		}
		if filter.Year != "" && res.Year != filter.Year {
			continue
		}
		if filter.Department != "" && res.Department != filter.Department {
			continue
		}
		if filter.Status != "" && res.Status != workflow.Status(filter.Status) {
			continue
		}
		results = append(results, res)
	}
	return results, nil
}

func (repo *resultRepository) SetStatus(ctx context.Context, id string, expect workflow.Status, patch result.Result) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	res, ok := repo.db.table[id]
	if !ok {
		return result.ErrNotFound
	}
	if res.Status != expect {
		return result.ErrStatusConflict
	}
	patch.ID = id
	repo.db.table[id] = &patch
	return nil
}
