package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/dagmawi/collegehub/core/registration"
	"github.com/dagmawi/collegehub/core/workflow"
)

type registrationRepository struct {
	db *registrationTable
}

var _ registration.Repository = (*registrationRepository)(nil) // interface compliance check

func NewRegistrationRepository(db *DB) registration.Repository {
	return &registrationRepository{db: db.registration}
}

func (repo *registrationRepository) query() []registration.Registration {
	regs := make([]registration.Registration, 0, len(repo.db.table))
	for _, r := range repo.db.table {
		regs = append(regs, *r)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].CreatedAt.Before(regs[j].CreatedAt) })
	return regs
}

func (repo *registrationRepository) CreateRegistration(ctx context.Context, reg registration.Registration) (registration.Registration, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, r := range repo.db.table {
		if r.StudentID == reg.StudentID && r.Semester == reg.Semester && r.AcademicYear == reg.AcademicYear {
			return registration.Registration{}, registration.ErrDuplicate
		}
	}
	repo.db.table[reg.ID] = &reg
	return reg, nil
}

func (repo *registrationRepository) GetRegistrationByID(ctx context.Context, id string) (registration.Registration, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if reg, ok := repo.db.table[id]; ok {
		return *reg, nil
	}
	return registration.Registration{}, registration.ErrNotFound
}

func (repo *registrationRepository) FilterByStudent(ctx context.Context, studentID string) ([]registration.Registration, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var regs []registration.Registration
	for _, reg := range repo.query() {
		if reg.StudentID == studentID {
			regs = append(regs, reg)
		}
	}
	return regs, nil
}

func (repo *registrationRepository) PendingForStage(ctx context.Context, stage string) ([]registration.Registration, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var regs []registration.Registration
	for _, reg := range repo.query() {
		if reg.Status != registration.StatusPending || reg.Semester == "1" {
			continue
		}
		if awaiting, _ := registration.Pipeline.Progress(reg.StageDecision); awaiting == stage {
			regs = append(regs, reg)
		}
	}
	return regs, nil
}

func (repo *registrationRepository) ApplyStageDecision(ctx context.Context, id, stage string, dec workflow.Decision, overall workflow.Status) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	reg, ok := repo.db.table[id]
	if !ok {
		return registration.ErrNotFound
	}
	var target *workflow.Decision
	switch stage {
	case registration.StageDepHead:
		target = &reg.DepHeadApproval
	case registration.StageDean:
		target = &reg.DeanApproval
	default:
		return registration.ErrStageConflict
	}
	if target.Status != workflow.Pending || reg.Status != registration.StatusPending {
		return registration.ErrStageConflict
	}
	*target = dec
	reg.Status = overall
	reg.UpdatedAt = time.Now().UTC()
	return nil
}
