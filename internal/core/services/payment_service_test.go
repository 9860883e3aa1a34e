package services

import (
	"context"
	"testing"

	"camlive/internal/core/domain"
	"camlive/internal/core/ports"
	"camlive/internal/infrastructure/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type MockTipNotifier struct {
	mock.Mock
}

func (m *MockTipNotifier) NotifyTip(streamID domain.StreamID, userID domain.UserID, username string, amount float64, message string) {
	m.Called(streamID, userID, username, amount, message)
}

func newTestPaymentService(t *testing.T, notifier ports.TipNotifier) (ports.PaymentService, ports.UserRepository) {
	users := memory.NewMemoryUserRepository()
	payments := memory.NewMemoryPaymentRepository()
	return NewPaymentService(payments, users, notifier, zaptest.NewLogger(t).Sugar()), users
}

func TestPaymentService_CreatePayment(t *testing.T) {
	svc, _ := newTestPaymentService(t, nil)

	payment, err := svc.CreatePayment(context.Background(), "user-1", "stream-1", 9.99, "USD", domain.PaymentTip, "nice")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, payment.Status)
	assert.NotEmpty(t, payment.ProcessorRef)
}

func TestPaymentService_RejectsNonPositiveAmount(t *testing.T) {
	svc, _ := newTestPaymentService(t, nil)

	_, err := svc.CreatePayment(context.Background(), "user-1", "stream-1", 0, "USD", domain.PaymentTip, "")
	assert.Error(t, err)
	_, err = svc.CreatePayment(context.Background(), "user-1", "stream-1", -1, "USD", domain.PaymentTip, "")
	assert.Error(t, err)
}

func TestPaymentService_CompletedTipIsAnnounced(t *testing.T) {
	notifier := new(MockTipNotifier)
	svc, users := newTestPaymentService(t, notifier)

	require.NoError(t, users.Create(context.Background(), &domain.User{
		ID:       "user-1",
		Username: "alice",
		Email:    "alice@example.com",
	}))

	payment, err := svc.CreatePayment(context.Background(), "user-1", "stream-1", 25, "USD", domain.PaymentTip, "great show")
	require.NoError(t, err)

	notifier.On("NotifyTip", domain.StreamID("stream-1"), domain.UserID("user-1"), "alice", 25.0, "great show").Once()

	completed, err := svc.CompletePayment(context.Background(), payment.ID, "ref-123")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCompleted, completed.Status)
	assert.Equal(t, "ref-123", completed.ProcessorRef)

	notifier.AssertExpectations(t)
}

func TestPaymentService_NonTipCompletionIsSilent(t *testing.T) {
	notifier := new(MockTipNotifier)
	svc, _ := newTestPaymentService(t, notifier)

	payment, err := svc.CreatePayment(context.Background(), "user-1", "", 10, "USD", domain.PaymentSubscription, "")
	require.NoError(t, err)

	_, err = svc.CompletePayment(context.Background(), payment.ID, "")
	require.NoError(t, err)

	notifier.AssertNotCalled(t, "NotifyTip", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_FailPayment(t *testing.T) {
	svc, _ := newTestPaymentService(t, nil)

	payment, err := svc.CreatePayment(context.Background(), "user-1", "stream-1", 10, "USD", domain.PaymentTip, "")
	require.NoError(t, err)

	failed, err := svc.FailPayment(context.Background(), payment.ID, "card declined")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentFailed, failed.Status)
}

func TestPaymentService_ListByUser(t *testing.T) {
	svc, _ := newTestPaymentService(t, nil)

	_, err := svc.CreatePayment(context.Background(), "user-1", "stream-1", 10, "USD", domain.PaymentTip, "")
	require.NoError(t, err)
	_, err = svc.CreatePayment(context.Background(), "user-2", "stream-1", 20, "USD", domain.PaymentTip, "")
	require.NoError(t, err)

	mine, err := svc.ListUserPayments(context.Background(), "user-1", 0, 10)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, domain.UserID("user-1"), mine[0].UserID)

	all, err := svc.ListAllPayments(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
