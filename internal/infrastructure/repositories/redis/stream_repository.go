package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"camlive/internal/core/domain"
	"camlive/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisStreamRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisStreamRepository(client *redis.Client) ports.StreamRepository {
	return &RedisStreamRepository{
		client: client,
		prefix: "camlive:stream:",
	}
}

func (r *RedisStreamRepository) streamKey(id domain.StreamID) string {
	return r.prefix + string(id)
}

func (r *RedisStreamRepository) keyIndexKey(streamKey string) string {
	return r.prefix + "key:" + streamKey
}

func (r *RedisStreamRepository) indexKey() string {
	return r.prefix + "all"
}

// streamRecord carries fields the public JSON tags hide.
type streamRecord struct {
	domain.Stream
	StreamKey string `json:"stream_key"`
}

func (r *RedisStreamRepository) Create(ctx context.Context, stream *domain.Stream) error {
	data, err := json.Marshal(&streamRecord{Stream: *stream, StreamKey: stream.StreamKey})
	if err != nil {
		return fmt.Errorf("failed to marshal stream: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.streamKey(stream.ID), data, 0)
	pipe.Set(ctx, r.keyIndexKey(stream.StreamKey), string(stream.ID), 0)
	pipe.ZAdd(ctx, r.indexKey(), redis.Z{Score: float64(stream.CreatedAt.UnixNano()), Member: string(stream.ID)})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store stream: %w", err)
	}
	return nil
}

func (r *RedisStreamRepository) GetByID(ctx context.Context, id domain.StreamID) (*domain.Stream, error) {
	data, err := r.client.Get(ctx, r.streamKey(id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrStreamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stream from Redis: %w", err)
	}

	var record streamRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stream: %w", err)
	}
	stream := record.Stream
	stream.StreamKey = record.StreamKey
	return &stream, nil
}

func (r *RedisStreamRepository) GetByStreamKey(ctx context.Context, key string) (*domain.Stream, error) {
	id, err := r.client.Get(ctx, r.keyIndexKey(key)).Result()
	if err == redis.Nil {
		return nil, domain.ErrStreamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve stream key index: %w", err)
	}
	return r.GetByID(ctx, domain.StreamID(id))
}

func (r *RedisStreamRepository) Update(ctx context.Context, stream *domain.Stream) error {
	exists, err := r.client.Exists(ctx, r.streamKey(stream.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check stream existence: %w", err)
	}
	if exists == 0 {
		return domain.ErrStreamNotFound
	}

	data, err := json.Marshal(&streamRecord{Stream: *stream, StreamKey: stream.StreamKey})
	if err != nil {
		return fmt.Errorf("failed to marshal stream: %w", err)
	}
	if err := r.client.Set(ctx, r.streamKey(stream.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to update stream: %w", err)
	}
	return nil
}

func (r *RedisStreamRepository) Delete(ctx context.Context, id domain.StreamID) error {
	stream, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.streamKey(id))
	pipe.Del(ctx, r.keyIndexKey(stream.StreamKey))
	pipe.ZRem(ctx, r.indexKey(), string(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete stream: %w", err)
	}
	return nil
}

func (r *RedisStreamRepository) List(ctx context.Context, status domain.StreamStatus, offset, limit int) ([]*domain.Stream, error) {
	ids, err := r.client.ZRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list streams: %w", err)
	}

	var matched []*domain.Stream
	for _, id := range ids {
		stream, err := r.GetByID(ctx, domain.StreamID(id))
		if err == domain.ErrStreamNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		if status == "" || stream.Status == status {
			matched = append(matched, stream)
		}
	}

	if offset >= len(matched) {
		return []*domain.Stream{}, nil
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], nil
}
