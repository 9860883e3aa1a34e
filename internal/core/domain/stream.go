package domain

import "time"

type StreamID string

type StreamStatus string

const (
	StreamScheduled StreamStatus = "scheduled"
	StreamLive      StreamStatus = "live"
	StreamEnded     StreamStatus = "ended"
)

type Stream struct {
	ID                 StreamID     `json:"id"`
	Title              string       `json:"title"`
	Description        string       `json:"description,omitempty"`
	PerformerID        UserID       `json:"performer_id"`
	Status             StreamStatus `json:"status"`
	StreamKey          string       `json:"-"`
	IsPrivate          bool         `json:"is_private"`
	ViewerCount        int          `json:"viewer_count"`
	ScheduledStartTime time.Time    `json:"scheduled_start_time,omitempty"`
	ActualStartTime    time.Time    `json:"actual_start_time,omitempty"`
	EndTime            time.Time    `json:"end_time,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// Duration returns the elapsed broadcast time in seconds. A stream that
// is still live is measured against now.
func (s *Stream) Duration(now time.Time) int64 {
	if s.ActualStartTime.IsZero() {
		return 0
	}
	end := s.EndTime
	if end.IsZero() {
		end = now
	}
	return int64(end.Sub(s.ActualStartTime).Seconds())
}

// StreamStats is the formatted statistics view returned by the API.
type StreamStats struct {
	ID          StreamID     `json:"id"`
	Title       string       `json:"title"`
	PerformerID UserID       `json:"performer_id"`
	Status      StreamStatus `json:"status"`
	Viewers     int          `json:"viewers"`
	Duration    int64        `json:"duration"`
	StartTime   time.Time    `json:"start_time,omitempty"`
	EndTime     time.Time    `json:"end_time,omitempty"`
}
