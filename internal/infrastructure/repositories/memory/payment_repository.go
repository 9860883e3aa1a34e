package memory

import (
	"context"
	"sort"
	"sync"

	"camlive/internal/core/domain"
	"camlive/internal/core/ports"
)

type MemoryPaymentRepository struct {
	payments map[domain.PaymentID]*domain.Payment
	mu       sync.RWMutex
}

func NewMemoryPaymentRepository() ports.PaymentRepository {
	return &MemoryPaymentRepository{
		payments: make(map[domain.PaymentID]*domain.Payment),
	}
}

func clonePayment(p *domain.Payment) *domain.Payment {
	c := *p
	return &c
}

func (r *MemoryPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.payments[payment.ID] = clonePayment(payment)
	return nil
}

func (r *MemoryPaymentRepository) GetByID(ctx context.Context, id domain.PaymentID) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	payment, exists := r.payments[id]
	if !exists {
		return nil, domain.ErrPaymentNotFound
	}
	return clonePayment(payment), nil
}

func (r *MemoryPaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.payments[payment.ID]; !exists {
		return domain.ErrPaymentNotFound
	}
	r.payments[payment.ID] = clonePayment(payment)
	return nil
}

func (r *MemoryPaymentRepository) ListByUser(ctx context.Context, userID domain.UserID, offset, limit int) ([]*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*domain.Payment
	for _, payment := range r.payments {
		if payment.UserID == userID {
			matched = append(matched, clonePayment(payment))
		}
	}
	return paginatePayments(matched, offset, limit), nil
}

func (r *MemoryPaymentRepository) List(ctx context.Context, offset, limit int) ([]*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*domain.Payment, 0, len(r.payments))
	for _, payment := range r.payments {
		all = append(all, clonePayment(payment))
	}
	return paginatePayments(all, offset, limit), nil
}

func paginatePayments(payments []*domain.Payment, offset, limit int) []*domain.Payment {
	sort.Slice(payments, func(i, j int) bool { return payments[i].CreatedAt.Before(payments[j].CreatedAt) })
	if offset >= len(payments) {
		return []*domain.Payment{}
	}
	end := len(payments)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return payments[offset:end]
}
