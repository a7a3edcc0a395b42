package inmemdb

import (
	"context"
	"sort"

	"github.com/dagmawi/collegehub/core/material"
)

type materialRepository struct {
	db *materialTables
}

var _ material.Repository = (*materialRepository)(nil) // interface compliance check

func NewMaterialRepository(db *DB) material.Repository {
	return &materialRepository{db: db.material}
}

func (repo *materialRepository) query() []material.Material {
	materials := make([]material.Material, 0, len(repo.db.materials))
	for _, m := range repo.db.materials {
		materials = append(materials, *m)
	}
	sort.Slice(materials, func(i, j int) bool { return materials[i].CreatedAt.Before(materials[j].CreatedAt) })
	return materials
}

func (repo *materialRepository) CreateMaterial(ctx context.Context, m material.Material) (material.Material, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.materials[m.ID] = &m
	return m, nil
}

func (repo *materialRepository) GetMaterialByID(ctx context.Context, id string) (material.Material, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if m, ok := repo.db.materials[id]; ok {
		return *m, nil
	}
	return material.Material{}, material.ErrNotFound
}

func (repo *materialRepository) FilterMaterials(ctx context.Context, filter material.QueryFilter) ([]material.Material, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var materials []material.Material
	for _, m := range repo.query() {
		if filter.Course != "" && m.Course != filter.Course {
			continue
		}
		if filter.Department != "" && m.Department != filter.Department {
			continue
		}
		if filter.Semester != "" && m.Semester != filter.Semester {
			continue
		}
		if filter.Year != "" && m.Year != filter.Year {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		if filter.UploadedBy != "" && m.UploadedBy != filter.UploadedBy {
			continue
		}
		materials = append(materials, m)
	}
	return materials, nil
}

func (repo *materialRepository) UpdateMaterial(ctx context.Context, m material.Material) (material.Material, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.materials[m.ID]; !ok {
		return material.Material{}, material.ErrNotFound
	}
	repo.db.materials[m.ID] = &m
	return m, nil
}

func (repo *materialRepository) DeleteMaterial(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.materials[id]; !ok {
		return material.ErrNotFound
	}
	delete(repo.db.materials, id)
	for subID, sub := range repo.db.submissions {
		if sub.MaterialID == id {
			delete(repo.db.submissions, subID)
		}
	}
	return nil
}

func (repo *materialRepository) UpsertSubmission(ctx context.Context, sub material.Submission) (material.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.submissions {
		if existing.MaterialID == sub.MaterialID && existing.StudentID == sub.StudentID {
			existing.FilePath = sub.FilePath
			existing.Comment = sub.Comment
			existing.SubmittedAt = sub.SubmittedAt
			return *existing, nil
		}
	}
	repo.db.submissions[sub.ID] = &sub
	return sub, nil
}

func (repo *materialRepository) GetSubmission(ctx context.Context, materialID, studentID string) (material.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, sub := range repo.db.submissions {
		if sub.MaterialID == materialID && sub.StudentID == studentID {
			return *sub, nil
		}
	}
	return material.Submission{}, material.ErrSubmissionNotFound
}

func (repo *materialRepository) GetSubmissionByID(ctx context.Context, id string) (material.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sub, ok := repo.db.submissions[id]; ok {
		return *sub, nil
	}
	return material.Submission{}, material.ErrSubmissionNotFound
}

func (repo *materialRepository) FilterSubmissions(ctx context.Context, materialID string) ([]material.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var subs []material.Submission
	for _, sub := range repo.db.submissions {
		if sub.MaterialID == materialID {
			subs = append(subs, *sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].SubmittedAt.Before(subs[j].SubmittedAt) })
	return subs, nil
}

func (repo *materialRepository) UpdateSubmission(ctx context.Context, sub material.Submission) (material.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.submissions[sub.ID]; !ok {
		return material.Submission{}, material.ErrSubmissionNotFound
	}
	repo.db.submissions[sub.ID] = &sub
	return sub, nil
}
