package services

import (
	"context"
	"fmt"
	"time"

	"camlive/internal/core/domain"
	"camlive/internal/core/ports"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type paymentService struct {
	payments ports.PaymentRepository
	users    ports.UserRepository
	notifier ports.TipNotifier
	logger   *zap.SugaredLogger
}

// NewPaymentService builds the payment workflow. The actual processor
// integration is a boundary stub: payments are created pending with a
// fake processor reference and moved to completed/failed by the
// webhook-style endpoints. notifier may be nil.
func NewPaymentService(payments ports.PaymentRepository, users ports.UserRepository, notifier ports.TipNotifier, logger *zap.SugaredLogger) ports.PaymentService {
	return &paymentService{
		payments: payments,
		users:    users,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *paymentService) CreatePayment(ctx context.Context, userID domain.UserID, streamID domain.StreamID, amount float64, currency string, kind domain.PaymentType, message string) (*domain.Payment, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("payment amount must be > 0")
	}
	if currency == "" {
		currency = "USD"
	}

	now := time.Now()
	payment := &domain.Payment{
		ID:           domain.PaymentID(uuid.New().String()),
		UserID:       userID,
		StreamID:     streamID,
		Amount:       amount,
		Currency:     currency,
		Type:         kind,
		Status:       domain.PaymentPending,
		Message:      message,
		ProcessorRef: "stub-" + uuid.New().String(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	s.logger.Infow("payment created",
		"payment_id", payment.ID,
		"user_id", userID,
		"type", kind,
		"amount", amount,
	)
	return payment, nil
}

func (s *paymentService) CompletePayment(ctx context.Context, id domain.PaymentID, processorRef string) (*domain.Payment, error) {
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	payment.Status = domain.PaymentCompleted
	if processorRef != "" {
		payment.ProcessorRef = processorRef
	}
	payment.UpdatedAt = time.Now()
	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, err
	}

	// A completed tip is announced to the stream's room.
	if payment.Type == domain.PaymentTip && payment.StreamID != "" && s.notifier != nil {
		username := string(payment.UserID)
		if user, err := s.users.GetByID(ctx, payment.UserID); err == nil {
			username = user.Username
		}
		s.notifier.NotifyTip(payment.StreamID, payment.UserID, username, payment.Amount, payment.Message)
	}

	return payment, nil
}

func (s *paymentService) FailPayment(ctx context.Context, id domain.PaymentID, reason string) (*domain.Payment, error) {
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	payment.Status = domain.PaymentFailed
	payment.UpdatedAt = time.Now()
	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, err
	}

	s.logger.Warnw("payment failed", "payment_id", id, "reason", reason)
	return payment, nil
}

func (s *paymentService) GetPayment(ctx context.Context, id domain.PaymentID) (*domain.Payment, error) {
	return s.payments.GetByID(ctx, id)
}

func (s *paymentService) ListUserPayments(ctx context.Context, userID domain.UserID, offset, limit int) ([]*domain.Payment, error) {
	return s.payments.ListByUser(ctx, userID, offset, limit)
}

func (s *paymentService) ListAllPayments(ctx context.Context, offset, limit int) ([]*domain.Payment, error) {
	return s.payments.List(ctx, offset, limit)
}
