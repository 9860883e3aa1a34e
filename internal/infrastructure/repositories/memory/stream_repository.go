package memory

import (
	"context"
	"sort"
	"sync"

	"camlive/internal/core/domain"
	"camlive/internal/core/ports"
)

type MemoryStreamRepository struct {
	streams map[domain.StreamID]*domain.Stream
	mu      sync.RWMutex
}

func NewMemoryStreamRepository() ports.StreamRepository {
	return &MemoryStreamRepository{
		streams: make(map[domain.StreamID]*domain.Stream),
	}
}

func cloneStream(s *domain.Stream) *domain.Stream {
	c := *s
	return &c
}

func (r *MemoryStreamRepository) Create(ctx context.Context, stream *domain.Stream) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.streams[stream.ID]; exists {
		return domain.ErrStreamNotFound
	}
	r.streams[stream.ID] = cloneStream(stream)
	return nil
}

func (r *MemoryStreamRepository) GetByID(ctx context.Context, id domain.StreamID) (*domain.Stream, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stream, exists := r.streams[id]
	if !exists {
		return nil, domain.ErrStreamNotFound
	}
	return cloneStream(stream), nil
}

func (r *MemoryStreamRepository) GetByStreamKey(ctx context.Context, key string) (*domain.Stream, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, stream := range r.streams {
		if stream.StreamKey == key {
			return cloneStream(stream), nil
		}
	}
	return nil, domain.ErrStreamNotFound
}

func (r *MemoryStreamRepository) Update(ctx context.Context, stream *domain.Stream) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.streams[stream.ID]; !exists {
		return domain.ErrStreamNotFound
	}
	r.streams[stream.ID] = cloneStream(stream)
	return nil
}

func (r *MemoryStreamRepository) Delete(ctx context.Context, id domain.StreamID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.streams[id]; !exists {
		return domain.ErrStreamNotFound
	}
	delete(r.streams, id)
	return nil
}

func (r *MemoryStreamRepository) List(ctx context.Context, status domain.StreamStatus, offset, limit int) ([]*domain.Stream, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*domain.Stream
	for _, stream := range r.streams {
		if status == "" || stream.Status == status {
			matched = append(matched, cloneStream(stream))
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.Before(matched[j].CreatedAt) })

	if offset >= len(matched) {
		return []*domain.Stream{}, nil
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], nil
}
