package services

import (
	"context"
	"time"

	"camlive/internal/core/domain"
	"camlive/internal/core/ports"
	"camlive/pkg/streamkey"

	"github.com/google/uuid"
)

type streamService struct {
	streams     ports.StreamRepository
	rtmpBaseURL string
	hlsBaseURL  string
}

func NewStreamService(streams ports.StreamRepository, rtmpBaseURL, hlsBaseURL string) ports.StreamService {
	return &streamService{
		streams:     streams,
		rtmpBaseURL: rtmpBaseURL,
		hlsBaseURL:  hlsBaseURL,
	}
}

func (s *streamService) CreateStream(ctx context.Context, performerID domain.UserID, title, description string, isPrivate bool) (*domain.Stream, error) {
	key, err := streamkey.Generate()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	stream := &domain.Stream{
		ID:          domain.StreamID(uuid.New().String()),
		Title:       title,
		Description: description,
		PerformerID: performerID,
		Status:      domain.StreamScheduled,
		StreamKey:   key,
		IsPrivate:   isPrivate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.streams.Create(ctx, stream); err != nil {
		return nil, err
	}
	return stream, nil
}

func (s *streamService) GetStream(ctx context.Context, id domain.StreamID) (*domain.Stream, error) {
	return s.streams.GetByID(ctx, id)
}

func (s *streamService) UpdateStream(ctx context.Context, stream *domain.Stream) error {
	stream.UpdatedAt = time.Now()
	return s.streams.Update(ctx, stream)
}

func (s *streamService) DeleteStream(ctx context.Context, id domain.StreamID) error {
	return s.streams.Delete(ctx, id)
}

func (s *streamService) StartStream(ctx context.Context, id domain.StreamID) (*domain.Stream, error) {
	stream, err := s.streams.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	stream.Status = domain.StreamLive
	stream.ActualStartTime = now
	stream.EndTime = time.Time{}
	stream.UpdatedAt = now
	if err := s.streams.Update(ctx, stream); err != nil {
		return nil, err
	}
	return stream, nil
}

func (s *streamService) EndStream(ctx context.Context, id domain.StreamID) (*domain.Stream, error) {
	stream, err := s.streams.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	stream.Status = domain.StreamEnded
	stream.EndTime = now
	stream.UpdatedAt = now
	if err := s.streams.Update(ctx, stream); err != nil {
		return nil, err
	}
	return stream, nil
}

func (s *streamService) ListStreams(ctx context.Context, status domain.StreamStatus, offset, limit int) ([]*domain.Stream, error) {
	return s.streams.List(ctx, status, offset, limit)
}

func (s *streamService) GetStreamStats(ctx context.Context, id domain.StreamID) (*domain.StreamStats, error) {
	stream, err := s.streams.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &domain.StreamStats{
		ID:          stream.ID,
		Title:       stream.Title,
		PerformerID: stream.PerformerID,
		Status:      stream.Status,
		Viewers:     stream.ViewerCount,
		Duration:    stream.Duration(time.Now()),
		StartTime:   stream.ActualStartTime,
		EndTime:     stream.EndTime,
	}, nil
}

func (s *streamService) PlaybackURLs(stream *domain.Stream) (string, string) {
	return streamkey.RTMPURL(s.rtmpBaseURL, stream.StreamKey),
		streamkey.HLSURL(s.hlsBaseURL, stream.StreamKey)
}
