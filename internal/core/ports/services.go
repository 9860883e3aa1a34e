package ports

import (
	"context"

	"camlive/internal/core/domain"
)

type StreamService interface {
	CreateStream(ctx context.Context, performerID domain.UserID, title, description string, isPrivate bool) (*domain.Stream, error)
	GetStream(ctx context.Context, id domain.StreamID) (*domain.Stream, error)
	UpdateStream(ctx context.Context, stream *domain.Stream) error
	DeleteStream(ctx context.Context, id domain.StreamID) error
	StartStream(ctx context.Context, id domain.StreamID) (*domain.Stream, error)
	EndStream(ctx context.Context, id domain.StreamID) (*domain.Stream, error)
	ListStreams(ctx context.Context, status domain.StreamStatus, offset, limit int) ([]*domain.Stream, error)
	GetStreamStats(ctx context.Context, id domain.StreamID) (*domain.StreamStats, error)
	PlaybackURLs(stream *domain.Stream) (rtmp, hls string)
}

type PaymentService interface {
	CreatePayment(ctx context.Context, userID domain.UserID, streamID domain.StreamID, amount float64, currency string, kind domain.PaymentType, message string) (*domain.Payment, error)
	CompletePayment(ctx context.Context, id domain.PaymentID, processorRef string) (*domain.Payment, error)
	FailPayment(ctx context.Context, id domain.PaymentID, reason string) (*domain.Payment, error)
	GetPayment(ctx context.Context, id domain.PaymentID) (*domain.Payment, error)
	ListUserPayments(ctx context.Context, userID domain.UserID, offset, limit int) ([]*domain.Payment, error)
	ListAllPayments(ctx context.Context, offset, limit int) ([]*domain.Payment, error)
}

// TipNotifier fans a completed tip out to the stream's broadcast room.
// Implemented by the websocket room registry; a nil notifier is allowed
// when the gateway is not running.
type TipNotifier interface {
	NotifyTip(streamID domain.StreamID, userID domain.UserID, username string, amount float64, message string)
}
