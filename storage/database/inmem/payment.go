package inmemdb

import (
	"context"
	"sort"

	"github.com/dagmawi/collegehub/core/payment"
	"github.com/dagmawi/collegehub/core/workflow"
)

type paymentRepository struct {
	db *paymentTable
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *DB) payment.Repository {
	return &paymentRepository{db: db.payment}
}

func (repo *paymentRepository) query() []payment.Payment {
	payments := make([]payment.Payment, 0, len(repo.db.table))
	for _, p := range repo.db.table {
		payments = append(payments, *p)
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].CreatedAt.Before(payments[j].CreatedAt) })
	return payments
}

func (repo *paymentRepository) CreatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.table[p.ID] = &p
	return p, nil
}

func (repo *paymentRepository) GetPaymentByID(ctx context.Context, id string) (payment.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.table[id]; ok {
		return *p, nil
	}
	return payment.Payment{}, payment.ErrNotFound
}

func (repo *paymentRepository) FilterPayments(ctx context.Context, filter payment.QueryFilter) ([]payment.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var payments []payment.Payment
	for _, p := range repo.query() {
		if filter.StudentID != "" && p.StudentID != filter.StudentID {
			continue
		}
		if filter.Semester != "" && p.Semester != filter.Semester {
			continue
		}
		if filter.Year != "" && p.Year != filter.Year {
			continue
		}
		if filter.Status != "" && p.Status != workflow.Status(filter.Status) {
			continue
		}
		payments = append(payments, p)
	}
	return payments, nil
}

func (repo *paymentRepository) SetStatus(ctx context.Context, id string, expect workflow.Status, patch payment.Payment) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	p, ok := repo.db.table[id]
	if !ok {
		return payment.ErrNotFound
	}
	if p.Status != expect {
		return payment.ErrStatusConflict
	}
	patch.ID = id
	repo.db.table[id] = &patch
	return nil
}
