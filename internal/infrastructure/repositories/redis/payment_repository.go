package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"camlive/internal/core/domain"
	"camlive/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisPaymentRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisPaymentRepository(client *redis.Client) ports.PaymentRepository {
	return &RedisPaymentRepository{
		client: client,
		prefix: "camlive:payment:",
	}
}

func (r *RedisPaymentRepository) paymentKey(id domain.PaymentID) string {
	return r.prefix + string(id)
}

func (r *RedisPaymentRepository) userIndexKey(userID domain.UserID) string {
	return r.prefix + "user:" + string(userID)
}

func (r *RedisPaymentRepository) indexKey() string {
	return r.prefix + "all"
}

func (r *RedisPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	data, err := json.Marshal(payment)
	if err != nil {
		return fmt.Errorf("failed to marshal payment: %w", err)
	}

	score := float64(payment.CreatedAt.UnixNano())
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.paymentKey(payment.ID), data, 0)
	pipe.ZAdd(ctx, r.indexKey(), redis.Z{Score: score, Member: string(payment.ID)})
	pipe.ZAdd(ctx, r.userIndexKey(payment.UserID), redis.Z{Score: score, Member: string(payment.ID)})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store payment: %w", err)
	}
	return nil
}

func (r *RedisPaymentRepository) GetByID(ctx context.Context, id domain.PaymentID) (*domain.Payment, error) {
	data, err := r.client.Get(ctx, r.paymentKey(id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment from Redis: %w", err)
	}

	var payment domain.Payment
	if err := json.Unmarshal([]byte(data), &payment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment: %w", err)
	}
	return &payment, nil
}

func (r *RedisPaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	exists, err := r.client.Exists(ctx, r.paymentKey(payment.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check payment existence: %w", err)
	}
	if exists == 0 {
		return domain.ErrPaymentNotFound
	}

	data, err := json.Marshal(payment)
	if err != nil {
		return fmt.Errorf("failed to marshal payment: %w", err)
	}
	if err := r.client.Set(ctx, r.paymentKey(payment.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return nil
}

func (r *RedisPaymentRepository) ListByUser(ctx context.Context, userID domain.UserID, offset, limit int) ([]*domain.Payment, error) {
	return r.listFromIndex(ctx, r.userIndexKey(userID), offset, limit)
}

func (r *RedisPaymentRepository) List(ctx context.Context, offset, limit int) ([]*domain.Payment, error) {
	return r.listFromIndex(ctx, r.indexKey(), offset, limit)
}

func (r *RedisPaymentRepository) listFromIndex(ctx context.Context, key string, offset, limit int) ([]*domain.Payment, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(offset + limit - 1)
	}
	ids, err := r.client.ZRange(ctx, key, int64(offset), stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	payments := make([]*domain.Payment, 0, len(ids))
	for _, id := range ids {
		payment, err := r.GetByID(ctx, domain.PaymentID(id))
		if err == domain.ErrPaymentNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, nil
}
